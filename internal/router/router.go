// Package router maps the API routes onto their handlers.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/duccv/medrecords-api/internal/handler"
	"github.com/duccv/medrecords-api/internal/middleware"
	"github.com/duccv/medrecords-api/internal/model/request"
	"github.com/duccv/medrecords-api/internal/validation"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	DrugRecord *handler.DrugRecordHandler
}

// Register mounts every API route on api. Authentication routes are public;
// drug record routes require an identity established by the Authenticator.
func Register(api *gin.RouterGroup, h Handlers) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", validation.Validate[request.RegisterRequest, any, any](), h.Auth.Register)
		authGroup.POST("/login", validation.Validate[request.LoginRequest, any, any](), h.Auth.Login)
	}

	drugs := api.Group("/drug-records", middleware.RequireAuth())
	{
		drugs.GET("", validation.Validate[any, any, request.PageQuery](), h.DrugRecord.List)
		drugs.GET("/search", validation.Validate[any, any, request.SearchDrugRecordQuery](), h.DrugRecord.Search)
		drugs.POST("/save", validation.Validate[any, any, request.SaveDrugRecordQuery](), h.DrugRecord.Save)
		drugs.GET("/manufacturer", validation.Validate[any, any, request.ManufacturerQuery](), h.DrugRecord.ByManufacturer)
		drugs.GET("/substance", validation.Validate[any, any, request.SubstanceQuery](), h.DrugRecord.BySubstance)
		drugs.GET("/product-number", validation.Validate[any, any, request.ProductNumberQuery](), h.DrugRecord.ByProductNumber)
		drugs.GET("/:applicationNumber", validation.Validate[any, request.ApplicationNumberParam, any](), h.DrugRecord.GetByApplicationNumber)
	}
}
