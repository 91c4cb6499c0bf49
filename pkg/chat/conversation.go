package chat

type Conversation struct {
	Messages []Message
	Model    string
}

func NewConversation(model string) Conversation {
	return Conversation{
		Messages: make([]Message, 0),
		Model:    model,
	}
}

func NewConversationWithSystem(model, systemPrompt string) Conversation {
	conv := NewConversation(model)
	if systemPrompt != "" {
		conv = AddMessage(conv, NewSystemMessage(systemPrompt))
	}
	return conv
}

func AddMessage(conv Conversation, msg Message) Conversation {
	messages := make([]Message, len(conv.Messages)+1)
	copy(messages, conv.Messages)
	messages[len(conv.Messages)] = msg

	return Conversation{
		Messages: messages,
		Model:    conv.Model,
	}
}

// LastUserMessage returns the most recent user-role message, skipping
// assistant and system entries.
func LastUserMessage(messages []Message) (Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].IsUser() {
			return messages[i], true
		}
	}
	return Message{}, false
}

// WireMessages returns the messages that may be sent to the bridge,
// dropping local-only entries like error turns.
func WireMessages(conv Conversation) []Message {
	wire := make([]Message, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		if msg.IsError() {
			continue
		}
		wire = append(wire, msg)
	}
	return wire
}
