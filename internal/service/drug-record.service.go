package service

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/internal/model"
	"github.com/duccv/medrecords-api/internal/model/response"
	"github.com/duccv/medrecords-api/internal/registry"
	"github.com/duccv/medrecords-api/internal/repository"
	"github.com/duccv/medrecords-api/pkg/logger"
)

// RegistryLookup fetches registry data for one field/value pair.
type RegistryLookup interface {
	FetchRegistryData(ctx context.Context, field, value string, page, size int) (string, error)
}

// DrugRecordService ingests registry applications into the local store and
// answers queries over it.
type DrugRecordService struct {
	repo   repository.DrugRecordRepository
	lookup RegistryLookup
	search registry.Fetcher
}

// NewDrugRecordService wires the store with two registry paths: lookup for
// exact application-number fetches on save, search for composite queries
// (usually cached).
func NewDrugRecordService(
	repo repository.DrugRecordRepository,
	lookup RegistryLookup,
	search registry.Fetcher,
) *DrugRecordService {
	return &DrugRecordService{
		repo:   repo,
		lookup: lookup,
		search: search,
	}
}

// registryResponse is the subset of a drugsfda response the service reads.
type registryResponse struct {
	Results []struct {
		ApplicationNumber string `json:"application_number"`
		OpenFDA           *struct {
			ManufacturerName []string `json:"manufacturer_name"`
			SubstanceName    []string `json:"substance_name"`
			ProductNDC       []string `json:"product_ndc"`
		} `json:"openfda"`
	} `json:"results"`
}

// SearchRegistry runs a manufacturer (and optional brand) search and returns
// the registry body unmodified.
func (s *DrugRecordService) SearchRegistry(
	ctx context.Context,
	manufacturer, brand string,
	page, size int,
) (json.RawMessage, error) {
	body, err := s.search.Fetch(ctx, registry.BuildSearchQuery(manufacturer, brand), page, size)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(body)) {
		logger.WithOperation(logger.FromContext(ctx), "searchRegistry").Warn("Registry returned invalid JSON for search",
			zap.String("manufacturer", manufacturer),
			zap.String("brand", brand))
		return nil, apperror.ErrMalformedRegistryResponse
	}
	return json.RawMessage(body), nil
}

// SaveFromRegistry fetches one application from the registry and upserts
// its projection. Saving the same application again replaces the record.
func (s *DrugRecordService) SaveFromRegistry(ctx context.Context, applicationNumber string) (*response.DrugRecordResponse, error) {
	log := logger.WithOperation(logger.FromContext(ctx), "saveFromRegistry").
		With(zap.String("applicationNumber", applicationNumber))

	body, err := s.lookup.FetchRegistryData(ctx, registry.ApplicationNumberField, applicationNumber, 1, 1)
	if err != nil {
		return nil, err
	}

	record, err := parseDrugRecord(applicationNumber, body)
	if err != nil {
		log.Warn("Unusable registry response", zap.Error(err))
		return nil, err
	}

	saved, err := s.repo.Save(ctx, record)
	if err != nil {
		return nil, err
	}

	log.Info("Drug record saved")
	res := response.NewDrugRecordResponse(saved)
	return &res, nil
}

func parseDrugRecord(applicationNumber, body string) (model.DrugRecord, error) {
	var parsed registryResponse
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return model.DrugRecord{}, fmt.Errorf("%w: %v", apperror.ErrMalformedRegistryResponse, err)
	}
	if len(parsed.Results) == 0 {
		return model.DrugRecord{}, fmt.Errorf("%w: no results", apperror.ErrMalformedRegistryResponse)
	}

	openfda := parsed.Results[0].OpenFDA
	if openfda == nil {
		return model.DrugRecord{}, fmt.Errorf("%w: missing openfda", apperror.ErrMalformedRegistryResponse)
	}
	if len(openfda.ManufacturerName) == 0 || openfda.ManufacturerName[0] == "" {
		return model.DrugRecord{}, fmt.Errorf("%w: missing manufacturer_name", apperror.ErrMalformedRegistryResponse)
	}
	if len(openfda.SubstanceName) == 0 || openfda.SubstanceName[0] == "" {
		return model.DrugRecord{}, fmt.Errorf("%w: missing substance_name", apperror.ErrMalformedRegistryResponse)
	}

	products := openfda.ProductNDC
	if products == nil {
		products = []string{}
	}

	return model.DrugRecord{
		ApplicationNumber: applicationNumber,
		ManufacturerName:  openfda.ManufacturerName[0],
		SubstanceName:     openfda.SubstanceName[0],
		ProductNumbers:    products,
	}, nil
}

func (s *DrugRecordService) FindByApplicationNumber(ctx context.Context, applicationNumber string) (*response.DrugRecordResponse, error) {
	record, err := s.repo.FindByApplicationNumber(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}
	res := response.NewDrugRecordResponse(record)
	return &res, nil
}

// ListAll returns one page of stored records; an empty store yields an
// empty page, not an error.
func (s *DrugRecordService) ListAll(ctx context.Context, page model.PageRequest) (*model.Page[response.DrugRecordResponse], error) {
	records, total, err := s.repo.FindAll(ctx, page)
	return toPage(records, total, page, err)
}

func (s *DrugRecordService) FindByManufacturerName(ctx context.Context, name string, page model.PageRequest) (*model.Page[response.DrugRecordResponse], error) {
	records, total, err := s.repo.FindByManufacturerName(ctx, name, page)
	return toPage(records, total, page, err)
}

func (s *DrugRecordService) FindBySubstanceName(ctx context.Context, name string, page model.PageRequest) (*model.Page[response.DrugRecordResponse], error) {
	records, total, err := s.repo.FindBySubstanceName(ctx, name, page)
	return toPage(records, total, page, err)
}

func (s *DrugRecordService) FindByProductNumber(ctx context.Context, productNumber string, page model.PageRequest) (*model.Page[response.DrugRecordResponse], error) {
	records, total, err := s.repo.FindByProductNumber(ctx, productNumber, page)
	return toPage(records, total, page, err)
}

func toPage(records []model.DrugRecord, total int64, page model.PageRequest, err error) (*model.Page[response.DrugRecordResponse], error) {
	if err != nil {
		return nil, err
	}
	return model.MapPage(model.NewPage(records, page, total), response.NewDrugRecordResponse), nil
}
