package mapper

import (
	"encoding/json"

	"run-coach-be/internal/entity"
	"run-coach-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) MessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:        msg.Id,
		UserId:    msg.UserId,
		Sender:    entity.MessageSender(msg.Sender),
		Text:      msg.Text,
		ClientAt:  msg.ClientAt,
		ServerAt:  msg.ServerAt,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:        msg.Id,
		UserId:    msg.UserId,
		Sender:    string(msg.Sender),
		Text:      msg.Text,
		ClientAt:  msg.ClientAt,
		ServerAt:  msg.ServerAt,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessagesToEntities(msgs []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}

func (m *ChatMapper) MetaToEntity(meta *model.ConversationMeta) *entity.ConversationMeta {
	if meta == nil {
		return nil
	}
	var tags []string
	if len(meta.Tags) > 0 {
		// A corrupt tags blob reads as no tags rather than failing the row.
		_ = json.Unmarshal(meta.Tags, &tags)
	}
	return &entity.ConversationMeta{
		Id:        meta.Id,
		UserId:    meta.UserId,
		Tags:      tags,
		Urgency:   meta.Urgency,
		UpdatedAt: meta.UpdatedAt,
	}
}

func (m *ChatMapper) MetaToModel(meta *entity.ConversationMeta) *model.ConversationMeta {
	if meta == nil {
		return nil
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	return &model.ConversationMeta{
		Id:        meta.Id,
		UserId:    meta.UserId,
		Tags:      datatypes.JSON(raw),
		Urgency:   meta.Urgency,
		UpdatedAt: meta.UpdatedAt,
	}
}
