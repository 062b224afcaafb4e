package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/duccv/medrecords-api/internal/model"
	"github.com/duccv/medrecords-api/internal/model/request"
	"github.com/duccv/medrecords-api/internal/model/response"
	"github.com/duccv/medrecords-api/internal/validation"
	"github.com/duccv/medrecords-api/util"
)

type DrugRecordService interface {
	SearchRegistry(ctx context.Context, manufacturer, brand string, page, size int) (json.RawMessage, error)
	SaveFromRegistry(ctx context.Context, applicationNumber string) (*response.DrugRecordResponse, error)
	FindByApplicationNumber(ctx context.Context, applicationNumber string) (*response.DrugRecordResponse, error)
	ListAll(ctx context.Context, page model.PageRequest) (*model.Page[response.DrugRecordResponse], error)
	FindByManufacturerName(ctx context.Context, name string, page model.PageRequest) (*model.Page[response.DrugRecordResponse], error)
	FindBySubstanceName(ctx context.Context, name string, page model.PageRequest) (*model.Page[response.DrugRecordResponse], error)
	FindByProductNumber(ctx context.Context, productNumber string, page model.PageRequest) (*model.Page[response.DrugRecordResponse], error)
}

type DrugRecordHandler struct {
	svc DrugRecordService
}

func NewDrugRecordHandler(svc DrugRecordService) *DrugRecordHandler {
	return &DrugRecordHandler{svc: svc}
}

// Search godoc
//
//	@Summary		Search the drug registry
//	@Description	Searches openFDA by manufacturer and optional brand name. The registry body is returned unmodified.
//	@Tags			DrugRecords
//	@Produce		json
//	@Security		BearerAuth
//	@Param			manufacturerName	query		string	true	"Manufacturer name"
//	@Param			brandName			query		string	false	"Brand name"
//	@Param			page				query		int		false	"Page (1-based)"	default(1)
//	@Param			size				query		int		false	"Page size"			default(10)
//	@Success		200					{object}	object
//	@Failure		400					{object}	response.ErrorResponse
//	@Failure		401					{object}	response.ErrorResponse
//	@Failure		404					{object}	response.ErrorResponse
//	@Failure		502					{object}	response.ErrorResponse
//	@Router			/drug-records/search [get]
func (h *DrugRecordHandler) Search(c *gin.Context) {
	q := validation.Query[request.SearchDrugRecordQuery](c)

	body, err := h.svc.SearchRegistry(c.Request.Context(), q.ManufacturerName, q.BrandName, q.Page, q.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Save godoc
//
//	@Summary		Save a drug record from the registry
//	@Description	Fetches one application from openFDA and stores its projection. Saving again replaces the stored record.
//	@Tags			DrugRecords
//	@Produce		json
//	@Security		BearerAuth
//	@Param			applicationNumber	query		string	true	"Application number"
//	@Success		201					{object}	response.DrugRecordResponse
//	@Failure		400					{object}	response.ErrorResponse
//	@Failure		401					{object}	response.ErrorResponse
//	@Failure		404					{object}	response.ErrorResponse
//	@Failure		502					{object}	response.ErrorResponse
//	@Router			/drug-records/save [post]
func (h *DrugRecordHandler) Save(c *gin.Context) {
	q := validation.Query[request.SaveDrugRecordQuery](c)

	saved, err := h.svc.SaveFromRegistry(c.Request.Context(), q.ApplicationNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, saved)
}

// GetByApplicationNumber godoc
//
//	@Summary	Get a stored drug record
//	@Tags		DrugRecords
//	@Produce	json
//	@Security	BearerAuth
//	@Param		applicationNumber	path		string	true	"Application number"
//	@Param		If-None-Match		header		string	false	"ETag from a previous response"
//	@Success	200					{object}	response.DrugRecordResponse
//	@Success	304
//	@Failure	401	{object}	response.ErrorResponse
//	@Failure	404	{object}	response.ErrorResponse
//	@Router		/drug-records/{applicationNumber} [get]
func (h *DrugRecordHandler) GetByApplicationNumber(c *gin.Context) {
	p := validation.Params[request.ApplicationNumberParam](c)

	record, err := h.svc.FindByApplicationNumber(c.Request.Context(), p.ApplicationNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	etag := util.GenerateETag(record)
	c.Header("ETag", etag)
	if util.ETagMatches(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}
	respond(c, http.StatusOK, record)
}

// List godoc
//
//	@Summary	List stored drug records
//	@Tags		DrugRecords
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page	query		int	false	"Page (1-based)"	default(1)
//	@Param		size	query		int	false	"Page size"			default(20)
//	@Success	200		{object}	model.Page[response.DrugRecordResponse]
//	@Failure	400		{object}	response.ErrorResponse
//	@Failure	401		{object}	response.ErrorResponse
//	@Router		/drug-records [get]
func (h *DrugRecordHandler) List(c *gin.Context) {
	q := validation.Query[request.PageQuery](c)
	h.page(c)(h.svc.ListAll(c.Request.Context(), pageRequest(q)))
}

// ByManufacturer godoc
//
//	@Summary	List stored drug records by manufacturer
//	@Tags		DrugRecords
//	@Produce	json
//	@Security	BearerAuth
//	@Param		manufacturerName	query		string	true	"Manufacturer name"
//	@Param		page				query		int		false	"Page (1-based)"	default(1)
//	@Param		size				query		int		false	"Page size"			default(20)
//	@Success	200					{object}	model.Page[response.DrugRecordResponse]
//	@Failure	400					{object}	response.ErrorResponse
//	@Router		/drug-records/manufacturer [get]
func (h *DrugRecordHandler) ByManufacturer(c *gin.Context) {
	q := validation.Query[request.ManufacturerQuery](c)
	h.page(c)(h.svc.FindByManufacturerName(c.Request.Context(), q.ManufacturerName, pageRequest(q.PageQuery)))
}

// BySubstance godoc
//
//	@Summary	List stored drug records by substance
//	@Tags		DrugRecords
//	@Produce	json
//	@Security	BearerAuth
//	@Param		substanceName	query		string	true	"Substance name"
//	@Param		page			query		int		false	"Page (1-based)"	default(1)
//	@Param		size			query		int		false	"Page size"			default(20)
//	@Success	200				{object}	model.Page[response.DrugRecordResponse]
//	@Failure	400				{object}	response.ErrorResponse
//	@Router		/drug-records/substance [get]
func (h *DrugRecordHandler) BySubstance(c *gin.Context) {
	q := validation.Query[request.SubstanceQuery](c)
	h.page(c)(h.svc.FindBySubstanceName(c.Request.Context(), q.SubstanceName, pageRequest(q.PageQuery)))
}

// ByProductNumber godoc
//
//	@Summary	List stored drug records containing a product number
//	@Tags		DrugRecords
//	@Produce	json
//	@Security	BearerAuth
//	@Param		productNumber	query		string	true	"Product number (NDC)"
//	@Param		page			query		int		false	"Page (1-based)"	default(1)
//	@Param		size			query		int		false	"Page size"			default(20)
//	@Success	200				{object}	model.Page[response.DrugRecordResponse]
//	@Failure	400				{object}	response.ErrorResponse
//	@Router		/drug-records/product-number [get]
func (h *DrugRecordHandler) ByProductNumber(c *gin.Context) {
	q := validation.Query[request.ProductNumberQuery](c)
	h.page(c)(h.svc.FindByProductNumber(c.Request.Context(), q.ProductNumber, pageRequest(q.PageQuery)))
}

func (h *DrugRecordHandler) page(c *gin.Context) func(*model.Page[response.DrugRecordResponse], error) {
	return func(p *model.Page[response.DrugRecordResponse], err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		respondPage(c, p.TotalItems, p)
	}
}

func pageRequest(q request.PageQuery) model.PageRequest {
	return model.PageRequest{Page: q.Page, Size: q.Size}
}
