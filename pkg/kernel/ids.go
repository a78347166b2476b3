package kernel

import "github.com/google/uuid"

type WorkflowID string

func NewWorkflowID(id string) WorkflowID { return WorkflowID(id) }
func (w WorkflowID) String() string      { return string(w) }
func (w WorkflowID) IsEmpty() bool       { return string(w) == "" }

type ConversationID string

func NewConversationID(id string) ConversationID { return ConversationID(id) }
func GenerateConversationID() ConversationID     { return ConversationID(uuid.New().String()) }
func (c ConversationID) String() string          { return string(c) }
func (c ConversationID) IsEmpty() bool           { return string(c) == "" }

type MessageID string

func NewMessageID(id string) MessageID { return MessageID(id) }
func GenerateMessageID() MessageID     { return MessageID(uuid.New().String()) }
func (m MessageID) String() string     { return string(m) }
func (m MessageID) IsEmpty() bool      { return string(m) == "" }

type ChannelID string

func NewChannelID(id string) ChannelID { return ChannelID(id) }
func (c ChannelID) String() string     { return string(c) }
func (c ChannelID) IsEmpty() bool      { return string(c) == "" }
