package response

import "github.com/duccv/medrecords-api/internal/model"

type DrugRecordResponse struct {
	ApplicationNumber string   `json:"applicationNumber"`
	ManufacturerName  string   `json:"manufacturerName"`
	SubstanceName     string   `json:"substanceName"`
	ProductNumbers    []string `json:"productNumbers"`
}

func NewDrugRecordResponse(r model.DrugRecord) DrugRecordResponse {
	products := r.ProductNumbers
	if products == nil {
		products = []string{}
	}
	return DrugRecordResponse{
		ApplicationNumber: r.ApplicationNumber,
		ManufacturerName:  r.ManufacturerName,
		SubstanceName:     r.SubstanceName,
		ProductNumbers:    products,
	}
}
