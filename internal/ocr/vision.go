// Package ocr adapts external OCR/vision producers into RawExtraction
// payloads for the merge and mapping pipeline. The producers are black
// boxes here; retries and rate limiting are their callers' concern.
package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/models"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/pkg/utils"
)

// visionPayload is the JSON shape the vision model is asked to return.
type visionPayload struct {
	RawText       string  `json:"raw_text"`
	Vendor        string  `json:"vendor"`
	Date          string  `json:"date"`
	Total         string  `json:"total"`
	Subtotal      string  `json:"subtotal"`
	Tax           string  `json:"tax"`
	InvoiceNumber string  `json:"invoice_number"`
	Confidence    float64 `json:"confidence"`
	LineItems     []struct {
		Description string `json:"description"`
		UnitPrice   string `json:"unit_price"`
		TotalPrice  string `json:"total_price"`
	} `json:"line_items"`
}

// VisionExtractor reads receipt images with a vision-capable chat model and
// produces a RawExtraction for the merger.
type VisionExtractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewVisionExtractor creates a vision extractor.
func NewVisionExtractor(apiKey, model string, logger *zap.Logger) *VisionExtractor {
	return &VisionExtractor{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// Extract reads up to two receipt page images and returns the structured
// extraction. Field-level confidences come from the model's self-reported
// confidence, clamped to [0,1].
func (v *VisionExtractor) Extract(ctx context.Context, pages [][]byte) (models.RawExtraction, error) {
	if len(pages) == 0 {
		return models.RawExtraction{}, fmt.Errorf("no pages to extract")
	}
	if len(pages) > 2 {
		// first two pages carry the totals block on company receipts
		pages = pages[:2]
	}

	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: visionPrompt,
	}}
	for _, page := range pages {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(page)),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       v.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert in reading Japanese receipts (レシート/領収書). Extract structured data exactly as printed.",
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		v.logger.Error("Vision extraction failed", zap.Error(err))
		return models.RawExtraction{}, fmt.Errorf("vision extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.RawExtraction{}, fmt.Errorf("no response from vision model")
	}

	var payload visionPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		v.logger.Error("Failed to parse vision response",
			zap.Error(err),
			zap.String("content", resp.Choices[0].Message.Content))
		return models.RawExtraction{}, fmt.Errorf("failed to parse vision response: %w", err)
	}

	return toRawExtraction(payload), nil
}

func toRawExtraction(payload visionPayload) models.RawExtraction {
	confidence := payload.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.7
	}

	extraction := models.RawExtraction{
		Source:           models.SourceVision,
		RawText:          utils.SanitizeText(payload.RawText),
		Entities:         map[string]models.Entity{},
		ConfidenceScores: map[string]float64{},
		Totals:           map[string]string{},
	}

	invoiceConfidence := confidence
	if payload.InvoiceNumber != "" && utils.ValidateRegistrationNumber(payload.InvoiceNumber) == nil {
		// a well-formed 登録番号 is almost never a misread
		invoiceConfidence = clampConfidence(confidence + 0.1)
	}

	entities := map[string]string{
		"vendor":         payload.Vendor,
		"date":           payload.Date,
		"invoice_number": payload.InvoiceNumber,
	}
	for field, text := range entities {
		if text == "" {
			continue
		}
		if field == "invoice_number" {
			extraction.Entities[field] = models.Entity{Text: text, Confidence: invoiceConfidence, Source: models.SourceVision}
			extraction.ConfidenceScores[field] = invoiceConfidence
			continue
		}
		extraction.Entities[field] = models.Entity{Text: text, Confidence: confidence, Source: models.SourceVision}
		extraction.ConfidenceScores[field] = confidence
	}

	totals := map[string]string{
		"total":    payload.Total,
		"subtotal": payload.Subtotal,
		"tax":      payload.Tax,
	}
	for key, value := range totals {
		if value != "" {
			extraction.Totals[key] = value
		}
	}

	for _, item := range payload.LineItems {
		if item.Description == "" {
			continue
		}
		extraction.LineItems = append(extraction.LineItems, models.LineItem{
			Description: item.Description,
			UnitPrice:   utils.ParseAmount(item.UnitPrice),
			TotalPrice:  utils.ParseAmount(item.TotalPrice),
		})
	}

	return extraction
}

func clampConfidence(c float64) float64 {
	if c > 1 {
		return 1
	}
	return c
}

const visionPrompt = `Extract all information from this Japanese receipt.

Required fields:
- raw_text: the full receipt text, line by line
- vendor: store name (店名)
- date: purchase date as printed
- total: total amount (合計) as a plain number string
- subtotal: subtotal (小計) if printed
- tax: consumption tax amount (消費税) if printed
- invoice_number: the qualified invoice registration number (登録番号, T + 13 digits) or receipt number if printed
- line_items: array of {description, unit_price, total_price}
- confidence: your overall confidence in the extraction, 0.0-1.0

Return as a single JSON object with exactly those keys.`
