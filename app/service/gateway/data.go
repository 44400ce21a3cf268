package gateway

// Opening lines offered to a transport when it starts a new call or chat.
var greetingMessages = []string{
	"Hello! Welcome to Fairway Pass support. How can I help you today?",
	"Hi, this is the Fairway Pass assistant. What can I do for you?",
	"Thanks for contacting Fairway Pass. How may I assist you?",
	"Welcome! You're speaking with the Fairway Pass assistant. How can I help?",
	"Hello, Fairway Pass support here. What can I help you with today?",
	"Hi there! How can I assist you with your golf pass?",
	"Hello and welcome! How can I help you with your golf pass today?",
	"Fairway Pass support, how can I help you?",
	"Hi! How can I assist you with your Fairway Pass?",
	"Welcome to Fairway Pass support. What can I do for you today?",
}

// Filler lines a voice transport can play while a task executor runs.
var holdingMessages = []string{
	"Please hold while I retrieve the information for you. Your patience is appreciated.",
	"I'm working on your request now. Thank you for waiting.",
	"Just a moment while I check that for you. Thank you for your patience.",
	"I'm processing your request. Thank you for holding.",
	"Let me look into that for you. This will only take a moment.",
	"Please bear with me while I find the information you requested.",
	"Thank you for waiting. I'm currently working on your request.",
	"I'm checking on that for you right now. Thank you for your patience.",
	"One moment please while I gather the details you need.",
	"Your request is being processed. Please hold for a moment.",
}

type turnRequest struct {
	SessionID   string `json:"session_id"`
	UserMessage string `json:"user_message"`
}

type turnResponse struct {
	BotMessage string `json:"bot_message"`
}

type greetingResponse struct {
	SessionID  string `json:"session_id"`
	BotMessage string `json:"bot_message"`
}

type archiveRequest struct {
	SessionID string `json:"session_id"`
}
