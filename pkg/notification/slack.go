package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackSender Slack消息发送器
type SlackSender struct{}

// NewSlackSender 创建Slack发送器实例
func NewSlackSender() *SlackSender {
	return &SlackSender{}
}

// SlackMessage Slack Incoming Webhook消息结构
type SlackMessage struct {
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment Slack附件
type SlackAttachment struct {
	Color  string       `json:"color,omitempty"`
	Fields []SlackField `json:"fields,omitempty"`
}

// SlackField Slack附件字段
type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// SendActivity 推送地址活动到Slack
func (s *SlackSender) SendActivity(webhookURL string, activity *ActivityMessage) error {
	slackMsg := SlackMessage{
		Text: "🔔 Address Activity",
		Attachments: []SlackAttachment{
			{
				Color: "#36a64f",
				Fields: []SlackField{
					{Title: "Type", Value: activity.Category, Short: true},
					{Title: "From", Value: activity.FromAddress, Short: false},
					{Title: "To", Value: activity.ToAddress, Short: false},
				},
			},
		},
	}

	jsonData, err := json.Marshal(slackMsg)
	if err != nil {
		return fmt.Errorf("failed to marshal slack message: %w", err)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Post(webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send slack message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}
