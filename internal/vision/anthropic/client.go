// Package anthropic implements vision.Extractor against the Claude
// messages API.
package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/preevind/timeverify/internal/common"
	"github.com/preevind/timeverify/internal/vision"
)

// Client calls Claude with one screenshot per request and parses the JSON
// array of timesheet records out of the reply.
type Client struct {
	cfg    common.VisionConfig
	client sdk.Client
	log    *slog.Logger
}

func NewClient(cfg common.VisionConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		client: sdk.NewClient(option.WithAPIKey(cfg.APIKey)),
		log:    logger,
	}
}

// Analyze sends exactly one message for the image and validates the reply
// against the timesheet schema. The service is not assumed idempotent, so
// there are no retries here; a failed image fails its document.
func (c *Client) Analyze(ctx context.Context, req vision.ImageRequest) (vision.RawExtraction, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	log := c.log
	if jobID := common.JobIDFromContext(ctx); jobID != "" {
		log = log.With("job_id", jobID)
	}

	log.Info("vision.analyze.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"source", req.SourceDocument,
		"image_index", req.ImageIndex,
		"image_bytes", len(req.Data),
	)

	callCtx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	prompt := buildPrompt(req.SourceDocument, req.ImageIndex)
	encoded := base64.StdEncoding.EncodeToString(req.Data)

	msg, err := c.client.Messages.New(callCtx, sdk.MessageNewParams{
		Model:     sdk.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(
				sdk.NewTextBlock(prompt),
				sdk.NewImageBlockBase64(req.MediaType, encoded),
			),
		},
	})
	if err != nil {
		kind := classifyTransportError(err)
		log.Error("vision.analyze.call_failed",
			"req_id", rid, "kind", string(kind), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return vision.RawExtraction{}, nil, &vision.Error{Kind: kind, Cause: err}
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())

	records, rawJSON, adjusted, err := parseRecords(text)
	if len(adjusted) > 0 {
		log.Warn("vision.analyze.sanitize_applied", "req_id", rid, "adjusted", adjusted)
	}
	if err != nil {
		log.Error("vision.analyze.unparsable",
			"req_id", rid, "error", err, "text_len", len(text),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return vision.RawExtraction{}, []byte(text), &vision.Error{Kind: vision.KindUnparsable, Cause: err}
	}

	log.Info("vision.analyze.ok",
		"req_id", rid,
		"records", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return vision.RawExtraction{Records: records}, rawJSON, nil
}

// parseRecords digs the JSON array out of the reply (models occasionally
// wrap it in prose), sanitizes it, and validates it against the schema.
func parseRecords(text string) ([]vision.RawRecord, []byte, []string, error) {
	payload := extractJSONPayload(text)
	if payload == "" {
		return nil, nil, nil, errors.New("no JSON payload in response")
	}

	cleaned, adjusted, err := vision.NormalizeExtractionJSON([]byte(payload))
	if err != nil {
		return nil, nil, nil, err
	}

	schema := vision.BuildTimesheetJSONSchema()
	if err := vision.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		return nil, cleaned, adjusted, err
	}

	var records []vision.RawRecord
	if err := json.Unmarshal(cleaned, &records); err != nil {
		return nil, cleaned, adjusted, err
	}
	return records, cleaned, adjusted, nil
}

// extractJSONPayload returns the outermost JSON array (or object) embedded
// in the text, or "" when none is present.
func extractJSONPayload(text string) string {
	if i, j := strings.Index(text, "["), strings.LastIndex(text, "]"); i >= 0 && j > i {
		return text[i : j+1]
	}
	if i, j := strings.Index(text, "{"), strings.LastIndex(text, "}"); i >= 0 && j > i {
		return text[i : j+1]
	}
	return ""
}

func classifyTransportError(err error) vision.Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return vision.KindTimeout
	}
	return vision.KindServiceError
}
