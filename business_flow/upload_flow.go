package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/app/services"
	"github.com/vasooli-labs/vasooli/models"
	"github.com/vasooli-labs/vasooli/repository"
	"github.com/vasooli-labs/vasooli/utils"
	"github.com/xuri/excelize/v2"
)

// UploadFlow ingests debtor list files and stores them in object storage
type UploadFlow interface {
	UploadDebtorFile(ctx context.Context, request *dto.UploadDebtorFileRequest, metadata *ClientMetadata) (*dto.UploadDebtorFileResponse, error)
	ListSourceFiles(ctx context.Context, request *dto.ListSourceFilesRequest) (*dto.ListSourceFilesResponse, error)
}

// UploadFlowImpl implements the upload business flow
type UploadFlowImpl struct {
	sourceFileRepo repository.SourceFileRepository
	storage        services.StorageService
}

// NewUploadFlow creates a new upload flow instance
func NewUploadFlow(
	sourceFileRepo repository.SourceFileRepository,
	storage services.StorageService,
) UploadFlow {
	return &UploadFlowImpl{
		sourceFileRepo: sourceFileRepo,
		storage:        storage,
	}
}

// UploadDebtorFile parses a CSV or Excel debtor list, uploads the raw file
// to object storage, and records it. Rows that fail validation are counted
// and skipped.
func (uf *UploadFlowImpl) UploadDebtorFile(ctx context.Context, request *dto.UploadDebtorFileRequest, metadata *ClientMetadata) (*dto.UploadDebtorFileResponse, error) {
	if len(request.Data) > utils.MaxContactFileSize {
		return nil, NewBusinessError("UPLOAD_VALIDATION_FAILED", "Upload validation failed", ErrFileTooLarge)
	}

	debtors, invalid, err := ParseDebtorFile(request.FileName, request.Data)
	if err != nil {
		return nil, NewBusinessError("UPLOAD_VALIDATION_FAILED", "Upload validation failed", err)
	}
	if len(debtors) == 0 {
		return nil, NewBusinessError("UPLOAD_VALIDATION_FAILED", "Upload validation failed", ErrSourceFileEmpty)
	}

	fileUUID := uuid.New()
	storageKey := fmt.Sprintf("debtor-files/%d/%s%s", request.CustomerID, fileUUID.String(), strings.ToLower(filepath.Ext(request.FileName)))

	url, err := uf.storage.Upload(ctx, storageKey, request.Data, request.ContentType)
	if err != nil {
		return nil, NewBusinessError("UPLOAD_FAILED", "Upload failed", err)
	}

	file := &models.SourceFile{
		UUID:         fileUUID,
		CustomerID:   request.CustomerID,
		FileName:     request.FileName,
		ContentType:  request.ContentType,
		SizeBytes:    int64(len(request.Data)),
		StorageKey:   storageKey,
		URL:          url,
		RowCount:     len(debtors),
		InvalidCount: invalid,
	}

	if err := uf.sourceFileRepo.Save(ctx, file); err != nil {
		return nil, NewBusinessError("UPLOAD_FAILED", "Upload failed", err)
	}

	return &dto.UploadDebtorFileResponse{
		UUID:         file.UUID.String(),
		FileName:     file.FileName,
		URL:          file.URL,
		RowCount:     file.RowCount,
		InvalidCount: file.InvalidCount,
		Debtors:      debtors,
	}, nil
}

// ListSourceFiles returns a page of the caller's uploaded files
func (uf *UploadFlowImpl) ListSourceFiles(ctx context.Context, request *dto.ListSourceFilesRequest) (*dto.ListSourceFilesResponse, error) {
	page, pageSize, err := ValidatePagination(request.Page, request.PageSize, utils.DefaultPageSize, utils.MaxPageSize)
	if err != nil {
		return nil, NewBusinessError("UPLOAD_LIST_FAILED", "Failed to list uploads", err)
	}

	files, err := uf.sourceFileRepo.ListByCustomer(ctx, request.CustomerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("UPLOAD_LIST_FAILED", "Failed to list uploads", err)
	}

	total, err := uf.sourceFileRepo.Count(ctx, models.SourceFileFilter{CustomerID: &request.CustomerID})
	if err != nil {
		return nil, NewBusinessError("UPLOAD_LIST_FAILED", "Failed to list uploads", err)
	}

	items := make([]dto.SourceFileDTO, 0, len(files))
	for _, f := range files {
		items = append(items, ToSourceFileDTO(*f))
	}

	return &dto.ListSourceFilesResponse{
		Items: items,
		Total: total,
	}, nil
}

// ParseDebtorFile extracts debtor rows from a CSV or Excel file. Expected
// columns in order: name, phone, amount. A header row is detected by an
// unparseable amount column and skipped.
func ParseDebtorFile(fileName string, data []byte) ([]dto.DebtorInput, int, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return parseDebtorCSV(data)
	case ".xlsx", ".xls":
		return parseDebtorExcel(data)
	default:
		return nil, 0, ErrUnsupportedFileFormat
	}
}

func parseDebtorCSV(data []byte) ([]dto.DebtorInput, int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, row)
	}

	return debtorsFromRows(rows)
}

func parseDebtorExcel(data []byte) ([]dto.DebtorInput, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, ErrSourceFileEmpty
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read Excel rows: %w", err)
	}

	return debtorsFromRows(rows)
}

func debtorsFromRows(rows [][]string) ([]dto.DebtorInput, int, error) {
	var debtors []dto.DebtorInput
	var invalid int

	for i, row := range rows {
		if len(row) < 3 {
			if !isBlankRow(row) {
				invalid++
			}
			continue
		}

		name := strings.TrimSpace(row[0])
		phone := strings.TrimSpace(row[1])
		amount, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)

		if err != nil {
			// First row with a non-numeric amount is treated as the header
			if i == 0 {
				continue
			}
			invalid++
			continue
		}

		if name == "" || phone == "" || amount <= 0 {
			invalid++
			continue
		}

		debtors = append(debtors, dto.DebtorInput{
			Name:   name,
			Phone:  phone,
			Amount: amount,
		})
	}

	return debtors, invalid, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
