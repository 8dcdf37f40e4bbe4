package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"sync"

	"github.com/twilio/twilio-go/client"

	"github.com/rrazong/leaderz-backend/internal/session"
)

// Processor handles one validated player message.
type Processor interface {
	HandleMessage(ctx context.Context, in session.Inbound) error
}

// WebhookOptions configures a WebhookHandler.
type WebhookOptions struct {
	// AuthToken enables X-Twilio-Signature verification when set.
	AuthToken string

	// PublicURL is the webhook URL as Twilio sees it. Signatures are
	// computed over it, so it must match the URL configured in Twilio.
	PublicURL string

	Logger *slog.Logger
}

// WebhookHandler receives Twilio message webhooks. It acknowledges each
// request at once and processes the message in the background.
type WebhookHandler struct {
	processor Processor
	validator *client.RequestValidator
	publicURL string
	logger    *slog.Logger

	// ctx outlives any single request; processing is never cut short by
	// Twilio closing the connection.
	ctx context.Context
	wg  sync.WaitGroup
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(processor Processor, opts WebhookOptions) *WebhookHandler {
	h := &WebhookHandler{
		processor: processor,
		publicURL: opts.PublicURL,
		logger:    opts.Logger,
		ctx:       context.Background(),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if opts.AuthToken != "" {
		validator := client.NewRequestValidator(opts.AuthToken)
		h.validator = &validator
	}
	return h
}

// fieldError describes one missing webhook field.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var requiredFields = []struct {
	name    string
	message string
}{
	{"Body", "Message body is required"},
	{"From", "From number is required"},
	{"To", "To number is required"},
	{"MessageSid", "Message SID is required"},
	{"AccountSid", "Account SID is required"},
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, ok := h.readParams(w, r)
	if !ok {
		return
	}

	var missing []fieldError
	for _, f := range requiredFields {
		if params[f.name] == "" {
			missing = append(missing, fieldError{Field: f.name, Message: f.message})
		}
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": missing})
		return
	}

	if h.validator != nil && !h.validSignature(r, params) {
		h.logger.Warn("Rejected webhook with invalid signature", "message_sid", params["MessageSid"])
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid signature"})
		return
	}

	in := session.Inbound{
		Sender: FormatPhoneNumber(params["From"]),
		Body:   params["Body"],
	}
	sid := params["MessageSid"]

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := h.processor.HandleMessage(h.ctx, in); err != nil {
			h.logger.Error("Failed to process message", "message_sid", sid, "from", in.Sender, "error", err)
		}
	}()

	w.WriteHeader(http.StatusOK)
}

// readParams flattens a form-encoded or JSON webhook body.
func (h *WebhookHandler) readParams(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var params map[string]string
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return nil, false
		}
		return params, true
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form body"})
		return nil, false
	}
	params := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params, true
}

func (h *WebhookHandler) validSignature(r *http.Request, params map[string]string) bool {
	url := h.publicURL
	if url == "" {
		scheme := "https"
		if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
			scheme = "http"
		}
		url = scheme + "://" + r.Host + r.URL.RequestURI()
	}
	return h.validator.Validate(url, params, r.Header.Get("X-Twilio-Signature"))
}

// Wait blocks until every accepted message has been processed.
func (h *WebhookHandler) Wait() {
	h.wg.Wait()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
