// Package bot turns chat messages into controller calls and formats the replies.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Alias1177/CardioPredictor/internal/features"
	"github.com/Alias1177/CardioPredictor/internal/interpret"
	"github.com/Alias1177/CardioPredictor/internal/session"
	"github.com/Alias1177/CardioPredictor/internal/validate"
	"github.com/Alias1177/CardioPredictor/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Reply texts
const (
	WelcomeText = "Welcome to the Heart Risk Predictor! Send /predict followed by name=value pairs, or /schema to see the fields."
	BusyText    = "Still working on your previous request, please wait."
	FailureText = "Prediction failed. The service could not be reached or returned an unexpected response. Please try again later."
	ClearedText = "History cleared."
	UnknownText = "Unknown command. Try /predict, /history, /clear, /status or /schema."
	disclaimer  = "This tool provides educational insights and does not constitute medical advice."
)

// Menu button labels
const (
	ButtonHistory = "Recent Results"
	ButtonStatus  = "Service Status"
	ButtonSchema  = "Fields"
	ButtonSample  = "Try Sample"
	ButtonClear   = "Clear History"
)

// ControllerFactory builds the controller for one chat
type ControllerFactory func(chatID int64) *session.Controller

// Handler keeps one controller per chat and admits one submission per chat at a time
type Handler struct {
	mu          sync.Mutex
	controllers map[int64]*session.Controller
	submitting  map[int64]bool
	factory     ControllerFactory
	logger      zerolog.Logger
}

// NewHandler creates a handler that builds controllers lazily
func NewHandler(factory ControllerFactory) *Handler {
	return &Handler{
		controllers: make(map[int64]*session.Controller),
		submitting:  make(map[int64]bool),
		factory:     factory,
		logger:      log.With().Str("component", "bot").Logger(),
	}
}

// controller returns the chat's controller, restoring its history on first use
func (h *Handler) controller(ctx context.Context, chatID int64) *session.Controller {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.controllers[chatID]
	if !ok {
		c = h.factory(chatID)
		c.Restore(ctx)
		h.controllers[chatID] = c
	}
	return c
}

// begin claims the chat's submission slot. It reports false when a submission is already running.
func (h *Handler) begin(chatID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.submitting[chatID] {
		return false
	}
	h.submitting[chatID] = true
	return true
}

func (h *Handler) done(chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.submitting, chatID)
}

// Handle answers one message
func (h *Handler) Handle(ctx context.Context, chatID int64, text string) string {
	command, args := splitCommand(text)
	c := h.controller(ctx, chatID)

	switch command {
	case "/start", "/help":
		return WelcomeText
	case "/predict":
		return h.predict(ctx, chatID, c, args)
	case "/sample", strings.ToLower(ButtonSample):
		return h.submit(ctx, chatID, c, features.Defaults())
	case "/history", strings.ToLower(ButtonHistory):
		return FormatHistory(c.History())
	case "/clear", strings.ToLower(ButtonClear):
		c.ClearHistory(ctx)
		return ClearedText
	case "/status", strings.ToLower(ButtonStatus):
		return FormatStatus(c.Status(ctx))
	case "/schema", strings.ToLower(ButtonSchema):
		return FormatSchema(c.Schema())
	}
	return UnknownText
}

func (h *Handler) predict(ctx context.Context, chatID int64, c *session.Controller, args []string) string {
	if len(args) == 0 {
		return "Usage: /predict age=57 sex=1 cp=3 ... (see /schema)"
	}
	raw, err := validate.ParsePairs(args)
	if err != nil {
		return err.Error()
	}
	return h.submit(ctx, chatID, c, raw)
}

func (h *Handler) submit(ctx context.Context, chatID int64, c *session.Controller, raw models.RawInputRecord) string {
	if !h.begin(chatID) {
		return BusyText
	}
	defer h.done(chatID)

	switch o := c.Submit(ctx, raw).(type) {
	case session.ValidationFailed:
		return FormatValidation(c.Schema(), o.Errors)
	case session.PredictionFailed:
		h.logger.Warn().Err(o.Err).Msg("Prediction failed for chat")
		return FailureText
	case session.Succeeded:
		return FormatPresentation(o.Presentation)
	}
	return FailureText
}

// splitCommand lowercases the command word and strips a @botname suffix
func splitCommand(text string) (string, []string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	if !strings.HasPrefix(text, "/") {
		return strings.ToLower(text), nil
	}

	fields := strings.Fields(text)
	command := strings.ToLower(fields[0])
	if i := strings.Index(command, "@"); i >= 0 {
		command = command[:i]
	}
	return command, fields[1:]
}

// FormatPresentation renders one result
func FormatPresentation(p models.PresentationResult) string {
	icon := "✅"
	if p.IsPositive {
		icon = "⚠️"
	}
	return fmt.Sprintf("%s Result: %s\nHealthy probability: %.1f%%\nHeart patient probability: %.1f%%\n\n%s",
		icon, p.Classification, p.NegativePct, p.PositivePct, disclaimer)
}

// FormatValidation lists field errors in schema order
func FormatValidation(schema features.Schema, errs models.ValidationError) string {
	var sb strings.Builder
	sb.WriteString("Please fix the following fields:")
	for _, f := range schema.Fields() {
		if msg, ok := errs[f.Name]; ok {
			fmt.Fprintf(&sb, "\n• %s (%s): %s", f.Label, f.Name, msg)
		}
	}
	return sb.String()
}

// FormatHistory lists recent results, newest first
func FormatHistory(entries models.HistoryLog) string {
	if len(entries) == 0 {
		return "No recent results"
	}

	var sb strings.Builder
	sb.WriteString("Recent results:")
	for i, e := range entries {
		label := interpret.LabelNegative
		if e.Result.Label == 1 {
			label = interpret.LabelPositive
		}
		fmt.Fprintf(&sb, "\n%d. %s: %s (%d%%)", i+1, models.FormatEntryTime(e.At), label, interpret.Confidence(e.Result))
	}
	return sb.String()
}

// FormatStatus describes the advisory service status
func FormatStatus(status models.ServiceStatus) string {
	switch status {
	case models.StatusReady:
		return "Prediction service is ready."
	case models.StatusNotReady:
		return "Prediction service is up but the model is not loaded yet."
	}
	return "Prediction service is unreachable."
}

// FormatSchema lists the fields with their allowed ranges
func FormatSchema(schema features.Schema) string {
	var sb strings.Builder
	sb.WriteString("Fields:")
	for _, f := range schema.Fields() {
		fmt.Fprintf(&sb, "\n%s: %s", f.Name, f.Label)
		if f.Min != nil && f.Max != nil {
			fmt.Fprintf(&sb, " [%s..%s]", formatNumber(*f.Min), formatNumber(*f.Max))
		}
	}
	return sb.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MainMenuKeyboard is the persistent reply keyboard
func MainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonSample),
			tgbotapi.NewKeyboardButton(ButtonHistory),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonStatus),
			tgbotapi.NewKeyboardButton(ButtonSchema),
			tgbotapi.NewKeyboardButton(ButtonClear),
		),
	)
}
