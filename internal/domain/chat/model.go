package chat

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	MaxMessages      = 50
	MaxContentLength = 8000
)

// SystemPrompt frames every conversation.
const SystemPrompt = "You are a compassionate health assistant specialized in hypertension management. " +
	"Provide empathetic, supportive, and medically accurate information. " +
	"Always encourage users to consult with their healthcare providers for medical decisions. " +
	"Be warm, understanding, and motivating in your responses. " +
	"Focus on lifestyle management, medication adherence, stress reduction, and emotional support."

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}
