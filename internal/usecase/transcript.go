package usecase

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/interview-eval/internal/domain"
	"github.com/fairyhunter13/interview-eval/pkg/textx"
)

// TranscriptService ingests uploaded transcript files and funnels them
// into the regular submission flow.
type TranscriptService struct {
	Submit       SubmitService
	MaxTextBytes int64
}

// NewTranscriptService constructs a TranscriptService.
func NewTranscriptService(submit SubmitService, maxTextBytes int64) TranscriptService {
	return TranscriptService{Submit: submit, MaxTextBytes: maxTextBytes}
}

// Ingest verifies the uploaded bytes are plain text, sanitizes them,
// and submits the content as the answer for the given question. Binary
// uploads (audio, video, PDF) are rejected; speech-to-text happens
// upstream of this service.
func (s TranscriptService) Ingest(ctx domain.Context, questionID string, raw []byte, modality *domain.ModalityMetrics, idemKey, requestID string) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: empty transcript", domain.ErrInvalidArgument)
	}
	// Sanitize before sniffing: stray control bytes from upstream
	// encoders would otherwise make plain text sniff as octet-stream.
	// Genuinely binary payloads keep their magic bytes and are still
	// rejected.
	text := textx.SanitizeText(string(raw))
	if text == "" {
		return "", fmt.Errorf("%w: empty transcript", domain.ErrInvalidArgument)
	}
	mt := mimetype.Detect([]byte(text))
	if !mt.Is("text/plain") {
		return "", fmt.Errorf("%w: unsupported transcript type %s", domain.ErrInvalidArgument, mt.String())
	}
	if s.MaxTextBytes > 0 {
		text = textx.Truncate(text, int(s.MaxTextBytes))
	}
	return s.Submit.Submit(ctx, questionID, text, modality, idemKey, requestID)
}
