package channel

import (
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/thetronjohnson/layrr/internal/dom"
)

// Frame statuses on the message connection.
const (
	StatusReceived = "received"
	StatusComplete = "complete"
	StatusError    = "error"
)

// Frame types.
const (
	TypeReload        = "reload"
	TypeBatchComplete = "batch_complete"
)

// EncodingGzipBase64 flags a screenshot payload as gzip-then-base64.
const EncodingGzipBase64 = "gzip+base64"

// Instruction is the client→server envelope on the message connection.
type Instruction struct {
	ID          string        `json:"id"`
	Selector    string        `json:"selector,omitempty"`
	Element     *dom.NodeInfo `json:"element,omitempty"`
	Instruction string        `json:"instruction"`
	Screenshot  string        `json:"screenshot,omitempty"`
	Encoding    string        `json:"encoding,omitempty"`
	ImagePath   string        `json:"imagePath,omitempty"`
	BatchNumber *int          `json:"batchNumber,omitempty"`
}

// Response is the server→client status frame for one instruction.
type Response struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// BatchComplete acknowledges a whole batch of instructions.
type BatchComplete struct {
	Type        string `json:"type"`
	BatchNumber int    `json:"batch_number"`
	MessageID   string `json:"message_id"`
}

// ErrorClass splits backend task errors into user-cancelled and genuine
// failure; the two get distinct user-facing copy.
type ErrorClass string

const (
	ErrorCancelled ErrorClass = "cancelled"
	ErrorFailed    ErrorClass = "failed"
)

// User-facing copy per error class.
const (
	CancelledCopy = "Request cancelled. No changes were made."
	FailedCopy    = "The change could not be applied. Please try again."
)

// cancelMarkers are the substrings backends use for user-driven aborts.
var cancelMarkers = []string{"abort", "cancel"}

// ClassifyError inspects backend error text for the cancellation markers.
func ClassifyError(message string) ErrorClass {
	lower := strings.ToLower(message)
	for _, marker := range cancelMarkers {
		if strings.Contains(lower, marker) {
			return ErrorCancelled
		}
	}
	return ErrorFailed
}

// UserCopy returns the user-facing text for a classified error.
func (c ErrorClass) UserCopy() string {
	if c == ErrorCancelled {
		return CancelledCopy
	}
	return FailedCopy
}

// screenshotCompressThreshold is the raw size above which screenshots are
// gzipped before base64 encoding.
const screenshotCompressThreshold = 64 * 1024

// EncodeScreenshot prepares raw screenshot bytes for the envelope, gzipping
// payloads large enough to benefit.
func EncodeScreenshot(raw []byte) (payload, encoding string) {
	if len(raw) <= screenshotCompressThreshold {
		return base64.StdEncoding.EncodeToString(raw), ""
	}
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		return base64.StdEncoding.EncodeToString(raw), ""
	}
	if err := gz.Close(); err != nil {
		return base64.StdEncoding.EncodeToString(raw), ""
	}
	if buf.Len() >= len(raw) {
		return base64.StdEncoding.EncodeToString(raw), ""
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), EncodingGzipBase64
}
