package model

// DrugRecord is the locally persisted projection of one registry application.
// The application number is the document identity, so saving the same
// application twice replaces the earlier document.
type DrugRecord struct {
	ApplicationNumber string   `bson:"_id"              json:"applicationNumber"`
	ManufacturerName  string   `bson:"manufacturerName" json:"manufacturerName"`
	SubstanceName     string   `bson:"substanceName"    json:"substanceName"`
	ProductNumbers    []string `bson:"productNumbers"   json:"productNumbers"`
}

const DrugRecordCollection = "drug_records"
