package dto

import (
	"time"
)

// UploadDebtorFileRequest represents an uploaded debtor list
type UploadDebtorFileRequest struct {
	CustomerID  uint   `json:"-"`
	FileName    string `json:"-"`
	ContentType string `json:"-"`
	Data        []byte `json:"-"`
}

// UploadDebtorFileResponse reports the stored file and parse results
type UploadDebtorFileResponse struct {
	UUID         string        `json:"uuid"`
	FileName     string        `json:"file_name"`
	URL          string        `json:"url"`
	RowCount     int           `json:"row_count"`
	InvalidCount int           `json:"invalid_count"`
	Debtors      []DebtorInput `json:"debtors"`
}

// ListSourceFilesRequest represents the request to list uploaded files
type ListSourceFilesRequest struct {
	CustomerID uint `json:"-"`
	Page       int  `json:"-"`
	PageSize   int  `json:"-"`
}

// SourceFileDTO represents one uploaded file in responses
type SourceFileDTO struct {
	UUID         string    `json:"uuid"`
	FileName     string    `json:"file_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	URL          string    `json:"url"`
	RowCount     int       `json:"row_count"`
	InvalidCount int       `json:"invalid_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListSourceFilesResponse represents a page of uploaded files
type ListSourceFilesResponse struct {
	Items []SourceFileDTO `json:"items"`
	Total int64           `json:"total"`
}
