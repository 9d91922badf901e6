package handlers

import (
	"io"

	"github.com/gofiber/fiber/v3"
	"github.com/vasooli-labs/vasooli/app/dto"
	businessflow "github.com/vasooli-labs/vasooli/business_flow"
	"github.com/vasooli-labs/vasooli/utils"
)

// UploadHandler handles debtor file upload endpoints
type UploadHandler struct {
	uploadFlow businessflow.UploadFlow
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadFlow businessflow.UploadFlow) *UploadHandler {
	return &UploadHandler{
		uploadFlow: uploadFlow,
	}
}

// Upload parses a CSV or Excel debtor list and stores the raw file
// @Summary Upload debtor file
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Debtor list (.csv, .xlsx, .xls)"
// @Success 201 {object} dto.APIResponse{data=dto.UploadDebtorFileResponse}
// @Router /api/v1/uploads [post]
func (h *UploadHandler) Upload(c fiber.Ctx) error {
	customerID, ok := customerIDFromContext(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "A file is required", "FILE_REQUIRED", nil)
	}
	if fileHeader.Size > int64(utils.MaxContactFileSize) {
		return ErrorResponse(c, fiber.StatusRequestEntityTooLarge, "File exceeds the maximum allowed size", "FILE_TOO_LARGE", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Failed to read uploaded file", "FILE_READ_FAILED", nil)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, int64(utils.MaxContactFileSize)+1))
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Failed to read uploaded file", "FILE_READ_FAILED", nil)
	}
	if len(data) > utils.MaxContactFileSize {
		return ErrorResponse(c, fiber.StatusRequestEntityTooLarge, "File exceeds the maximum allowed size", "FILE_TOO_LARGE", nil)
	}

	req := dto.UploadDebtorFileRequest{
		CustomerID:  customerID,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}

	ctx := createRequestContext(c, "upload")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.uploadFlow.UploadDebtorFile(ctx, &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsFileTooLarge(err):
			return ErrorResponse(c, fiber.StatusRequestEntityTooLarge, "File exceeds the maximum allowed size", "FILE_TOO_LARGE", nil)
		case businessflow.IsUnsupportedFileFormat(err):
			return ErrorResponse(c, fiber.StatusBadRequest, "Unsupported file format", "UNSUPPORTED_FILE_FORMAT", nil)
		case businessflow.IsSourceFileEmpty(err):
			return ErrorResponse(c, fiber.StatusBadRequest, "File contains no debtor rows", "FILE_EMPTY", nil)
		default:
			return ErrorResponse(c, fiber.StatusInternalServerError, "Upload failed", "UPLOAD_FAILED", nil)
		}
	}

	return SuccessResponse(c, fiber.StatusCreated, "File uploaded successfully", result)
}

// List returns a page of the caller's uploaded files
// @Summary List uploads
// @Tags uploads
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListSourceFilesResponse}
// @Router /api/v1/uploads [get]
func (h *UploadHandler) List(c fiber.Ctx) error {
	customerID, ok := customerIDFromContext(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	req := dto.ListSourceFilesRequest{
		CustomerID: customerID,
		Page:       fiber.Query(c, "page", 0),
		PageSize:   fiber.Query(c, "page_size", 0),
	}

	ctx := createRequestContext(c, "upload_list")

	result, err := h.uploadFlow.ListSourceFiles(ctx, &req)
	if err != nil {
		switch {
		case businessflow.IsInvalidPage(err), businessflow.IsInvalidPageSize(err):
			return ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		default:
			return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list uploads", "UPLOAD_LIST_FAILED", nil)
		}
	}

	return SuccessResponse(c, fiber.StatusOK, "Uploads retrieved successfully", result)
}
