package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DiscordSender Discord消息发送器
type DiscordSender struct{}

// NewDiscordSender 创建Discord发送器实例
func NewDiscordSender() *DiscordSender {
	return &DiscordSender{}
}

// DiscordMessage Discord Webhook消息结构
type DiscordMessage struct {
	Content string         `json:"content,omitempty"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

// DiscordEmbed Discord嵌入消息
type DiscordEmbed struct {
	Title  string              `json:"title"`
	Color  int                 `json:"color,omitempty"`
	Fields []DiscordEmbedField `json:"fields,omitempty"`
}

// DiscordEmbedField Discord嵌入字段
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendActivity 推送地址活动到Discord
func (s *DiscordSender) SendActivity(webhookURL string, activity *ActivityMessage) error {
	discordMsg := DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title: "🔔 Address Activity",
				Color: 0x36a64f,
				Fields: []DiscordEmbedField{
					{Name: "Type", Value: activity.Category, Inline: true},
					{Name: "From", Value: activity.FromAddress, Inline: false},
					{Name: "To", Value: activity.ToAddress, Inline: false},
				},
			},
		},
	}

	jsonData, err := json.Marshal(discordMsg)
	if err != nil {
		return fmt.Errorf("failed to marshal discord message: %w", err)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Post(webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send discord message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}

	return nil
}
