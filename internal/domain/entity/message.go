package entity

import "github.com/google/uuid"

// ConversionRequestMessage is the inbound message from the conversion request queue.
// SourceKey, when set, names an object in the source bucket that is fetched into
// the source directory as SourceName before converting.
type ConversionRequestMessage struct {
	RequestID  uuid.UUID `json:"request_id"`
	SourceName string    `json:"source_name"`
	SourceKey  string    `json:"source_key,omitempty"`
	UserEmail  string    `json:"user_email,omitempty"`
}

// ConversionStatusMessage is the outbound message published to the status queue.
type ConversionStatusMessage struct {
	RequestID    uuid.UUID        `json:"request_id"`
	ConversionID uuid.UUID        `json:"conversion_id"`
	SourceName   string           `json:"source_name"`
	Status       ConversionStatus `json:"status"`
	OutputDir    string           `json:"output_dir,omitempty"`
	FrameCount   int              `json:"frame_count"`
	ArchiveKey   string           `json:"archive_key,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
}

func NewStatusMessage(requestID uuid.UUID, c *Conversion) ConversionStatusMessage {
	return ConversionStatusMessage{
		RequestID:    requestID,
		ConversionID: c.ID,
		SourceName:   c.SourceName,
		Status:       c.Status,
		OutputDir:    c.OutputDir,
		FrameCount:   c.FrameCount,
		ArchiveKey:   c.ArchiveKey,
		ErrorMessage: c.ErrorMessage,
	}
}
