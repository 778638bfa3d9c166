package entity

import (
	"time"

	"github.com/google/uuid"
)

type ConversionStatus string

const (
	ConversionStatusPending          ConversionStatus = "PENDING"
	ConversionStatusProcessing       ConversionStatus = "PROCESSING"
	ConversionStatusCompleted        ConversionStatus = "COMPLETED"
	ConversionStatusAlreadyConverted ConversionStatus = "ALREADY_CONVERTED"
	ConversionStatusFailed           ConversionStatus = "FAILED"
)

// Conversion is the history record of one conversion attempt.
type Conversion struct {
	ID           uuid.UUID
	SourceName   string
	OutputDir    string
	Status       ConversionStatus
	FrameCount   int
	ArchiveKey   string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func NewConversion(sourceName string) *Conversion {
	now := time.Now().UTC()
	return &Conversion{
		ID:         uuid.New(),
		SourceName: sourceName,
		Status:     ConversionStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (c *Conversion) MarkProcessing() {
	c.Status = ConversionStatusProcessing
	c.UpdatedAt = time.Now().UTC()
}

// Finish copies the terminal outcome of an extraction onto the record.
func (c *Conversion) Finish(ex *Extraction) {
	now := time.Now().UTC()
	c.OutputDir = ex.OutputDir
	c.FrameCount = ex.FramesWritten
	c.UpdatedAt = now
	c.CompletedAt = &now

	switch ex.Outcome {
	case OutcomeCompleted:
		c.Status = ConversionStatusCompleted
	case OutcomeAlreadyConverted:
		c.Status = ConversionStatusAlreadyConverted
	default:
		c.Status = ConversionStatusFailed
		if ex.Err != nil {
			c.ErrorMessage = ex.Err.Error()
		}
	}
}

func (c *Conversion) MarkArchived(key string) {
	c.ArchiveKey = key
	c.UpdatedAt = time.Now().UTC()
}

// NoteArchiveFailure keeps the frames but remembers why the archive is missing.
func (c *Conversion) NoteArchiveFailure(errMsg string) {
	c.ErrorMessage = "archive: " + errMsg
	c.UpdatedAt = time.Now().UTC()
}

func (c *Conversion) IsTerminal() bool {
	switch c.Status {
	case ConversionStatusCompleted, ConversionStatusAlreadyConverted, ConversionStatusFailed:
		return true
	}
	return false
}
