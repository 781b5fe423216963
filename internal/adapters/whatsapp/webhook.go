package whatsapp

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
	"github.com/uinjkt-dev/campus-assistant/internal/core/ports"
	"github.com/uinjkt-dev/campus-assistant/internal/observability/metrics"
)

// User commands, matched case-insensitively on the trimmed message.
const (
	cmdLiveChat = "#livechat"
	cmdDone     = "#selesai"
)

const (
	liveChatInOfficeHours = "Baik, Anda telah terhubung dengan antrean operator. Mohon tunggu, tiket Anda: %s."
	liveChatOffHours      = "Permintaan live chat dicatat dengan tiket %s. Operator tersedia Senin-Jumat 08.00-16.00; kami balas begitu jam kerja dimulai."
	liveChatDone          = "Sesi live chat selesai. Asisten AI aktif kembali, silakan lanjut bertanya."
	sessionResumed        = "Sesi operator berakhir karena tidak ada aktivitas. Asisten AI aktif kembali.\n\n"
)

// Handler serves the Twilio-style WhatsApp webhook: form-encoded message
// in, TwiML XML out. Routing depends on the per-phone session mode.
type Handler struct {
	chat     ports.ChatService
	sessions ports.SessionStore
	tickets  ports.TicketStore
	metrics  *metrics.HTTPServerMetrics
	now      func() time.Time
}

func NewHandler(chat ports.ChatService, sessions ports.SessionStore, tickets ports.TicketStore, m *metrics.HTTPServerMetrics) *Handler {
	return &Handler{
		chat:     chat,
		sessions: sessions,
		tickets:  tickets,
		metrics:  m,
		now:      time.Now,
	}
}

type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	body := strings.TrimSpace(r.PostFormValue("Body"))
	from := strings.TrimSpace(r.PostFormValue("From"))
	if from == "" {
		http.Error(w, "sender is required", http.StatusBadRequest)
		return
	}

	reply, err := h.handleMessage(r.Context(), from, body)
	if err != nil {
		slog.Error("webhook_failed", "from", from, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeTwiML(w, reply)
}

// handleMessage returns the reply text; "" keeps the bot silent (the
// operator owns the conversation).
func (h *Handler) handleMessage(ctx context.Context, from, body string) (string, error) {
	if err := h.sessions.Touch(ctx, from, body, "user"); err != nil {
		return "", fmt.Errorf("record inbound message: %w", err)
	}

	switch strings.ToLower(body) {
	case cmdLiveChat:
		return h.startLiveChat(ctx, from)
	case cmdDone:
		return h.finishLiveChat(ctx, from)
	}

	mode, justReset, err := h.sessions.GetMode(ctx, from)
	if err != nil {
		return "", fmt.Errorf("load session mode: %w", err)
	}
	if h.metrics != nil {
		h.metrics.RecordWebhookMessage("api", string(mode))
	}

	if mode == domain.ModeHuman {
		return "", nil
	}

	result, err := h.chat.AnswerQuery(ctx, body, nil)
	if err != nil {
		if domain.IsKind(err, domain.ErrInvalidInput) {
			return "Silakan tulis pertanyaan Anda.", nil
		}
		return "", fmt.Errorf("answer question: %w", err)
	}
	if err := h.sessions.Touch(ctx, from, result.Answer, "bot"); err != nil {
		slog.Warn("record_reply_failed", "from", from, "error", err)
	}

	if justReset {
		return sessionResumed + result.Answer, nil
	}
	return result.Answer, nil
}

func (h *Handler) startLiveChat(ctx context.Context, from string) (string, error) {
	if err := h.sessions.SetMode(ctx, from, domain.ModeHuman); err != nil {
		return "", fmt.Errorf("set human mode: %w", err)
	}

	ticket, err := h.tickets.ActiveTicket(ctx, from)
	if err != nil {
		return "", fmt.Errorf("check active ticket: %w", err)
	}
	if ticket == nil {
		ticket, err = h.tickets.CreateTicket(ctx, from, "Permintaan live chat WhatsApp")
		if err != nil {
			return "", fmt.Errorf("create ticket: %w", err)
		}
		if h.metrics != nil {
			h.metrics.RecordTicketOpened("api")
		}
	}

	if domain.IsOfficeHours(h.now()) {
		return fmt.Sprintf(liveChatInOfficeHours, ticket.ID), nil
	}
	return fmt.Sprintf(liveChatOffHours, ticket.ID), nil
}

func (h *Handler) finishLiveChat(ctx context.Context, from string) (string, error) {
	if err := h.sessions.SetMode(ctx, from, domain.ModeAI); err != nil {
		return "", fmt.Errorf("set ai mode: %w", err)
	}

	ticket, err := h.tickets.ActiveTicket(ctx, from)
	if err != nil {
		return "", fmt.Errorf("check active ticket: %w", err)
	}
	if ticket != nil {
		if err := h.tickets.CloseTicket(ctx, ticket.ID); err != nil {
			return "", fmt.Errorf("close ticket: %w", err)
		}
	}
	return liveChatDone, nil
}

func writeTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(twiml{Message: message})
}
