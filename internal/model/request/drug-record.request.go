package request

// SearchDrugRecordQuery is the registry search request.
type SearchDrugRecordQuery struct {
	ManufacturerName string `form:"manufacturerName" validate:"required,notblank"`
	BrandName        string `form:"brandName"`
	Page             int    `form:"page,default=1"   validate:"min=1,max=100000"`
	Size             int    `form:"size,default=10"  validate:"min=1,max=1000"`
}

type SaveDrugRecordQuery struct {
	ApplicationNumber string `form:"applicationNumber" validate:"required,notblank"`
}

type ApplicationNumberParam struct {
	ApplicationNumber string `uri:"applicationNumber" validate:"required,notblank"`
}

// PageQuery is shared by every listing endpoint.
type PageQuery struct {
	Page int `form:"page,default=1"  validate:"min=1,max=100000"`
	Size int `form:"size,default=20" validate:"min=1,max=1000"`
}

type ManufacturerQuery struct {
	PageQuery
	ManufacturerName string `form:"manufacturerName" validate:"required,notblank"`
}

type SubstanceQuery struct {
	PageQuery
	SubstanceName string `form:"substanceName" validate:"required,notblank"`
}

type ProductNumberQuery struct {
	PageQuery
	ProductNumber string `form:"productNumber" validate:"required,notblank"`
}
