package client

import (
	"encoding/json"
	"math"
	"time"
)

// =============================================================================
// TYPES (matching the assistant service JSON)
// =============================================================================

// Status is the system status payload served by GET /status.
type Status struct {
	Status     string        `json:"status"`
	NeuralLoad string        `json:"neural_load"`
	Processing string        `json:"processing"`
	Memory     string        `json:"memory"`
	Connection string        `json:"connection"`
	Detailed   *StatusDetail `json:"detailed,omitempty"`
}

const statusOffline = "offline"

// OfflineStatus is the synthetic payload returned when the service cannot be reached.
func OfflineStatus() Status {
	return Status{
		Status:     statusOffline,
		NeuralLoad: "0%",
		Processing: "0 GHz",
		Memory:     "0 GB",
		Connection: "Offline",
	}
}

// Online reports whether the payload came from a reachable service.
func (s Status) Online() bool {
	return s.Status != statusOffline
}

// StatusDetail carries the host telemetry shown in the system panel.
type StatusDetail struct {
	CPU          CPUStats            `json:"cpu"`
	Memory       MemoryStats         `json:"memory"`
	Disk         DiskStats           `json:"disk"`
	Network      NetworkStats        `json:"network"`
	WifiSignal   *float64            `json:"wifi_signal"`
	Battery      *BatteryStatus      `json:"battery"`
	Temperature  *TemperatureReading `json:"temperature"`
	TopProcesses []ProcessUsage      `json:"top_processes"`
	Timestamp    float64             `json:"timestamp"`
}

// CPUStats describes processor usage.
type CPUStats struct {
	UsagePercent float64   `json:"usage_percent"`
	FrequencyGHz float64   `json:"frequency_ghz"`
	Cores        int       `json:"cores"`
	History      []float64 `json:"history"`
}

// MemoryStats describes RAM usage.
type MemoryStats struct {
	UsagePercent float64   `json:"usage_percent"`
	UsedGB       float64   `json:"used_gb"`
	TotalGB      float64   `json:"total_gb"`
	AvailableGB  float64   `json:"available_gb"`
	History      []float64 `json:"history"`
}

// DiskStats describes disk usage.
type DiskStats struct {
	UsagePercent float64 `json:"usage_percent"`
	UsedGB       float64 `json:"used_gb"`
	TotalGB      float64 `json:"total_gb"`
	FreeGB       float64 `json:"free_gb"`
}

// NetworkStats describes cumulative network counters.
type NetworkStats struct {
	BytesSentMB float64 `json:"bytes_sent_mb"`
	BytesRecvMB float64 `json:"bytes_recv_mb"`
	PacketsSent int64   `json:"packets_sent"`
	PacketsRecv int64   `json:"packets_recv"`
}

// BatteryStatus is present only on hosts with a battery.
type BatteryStatus struct {
	Percent         float64  `json:"percent"`
	PluggedIn       bool     `json:"plugged_in"`
	TimeLeftMinutes *float64 `json:"time_left_minutes"`
}

// TemperatureReading is a single sensor reading.
type TemperatureReading struct {
	Sensor         string   `json:"sensor"`
	CurrentCelsius float64  `json:"current_celsius"`
	HighCelsius    *float64 `json:"high_celsius"`
}

// ProcessUsage is one row of the top-processes table.
type ProcessUsage struct {
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// ConversationEntry is one exchange from the service's history.
type ConversationEntry struct {
	Timestamp float64 `json:"timestamp"`
	User      string  `json:"user"`
	Assistant string  `json:"assistant"`
}

// Time converts the Unix seconds timestamp.
func (e ConversationEntry) Time() time.Time {
	sec := int64(e.Timestamp)
	nsec := int64((e.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// chatRequest is the request payload for POST /chat.
type chatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply to a chat message.
type ChatResponse struct {
	Response            string               `json:"response"`
	Status              string               `json:"status"`
	Speaking            bool                 `json:"speaking,omitempty"`
	SpeechDurationMs    *float64             `json:"speech_duration,omitempty"`
	HologramSync        bool                 `json:"hologram_sync,omitempty"`
	Suggestions         []string             `json:"suggestions,omitempty"`
	ConversationContext *ConversationContext `json:"conversation_context,omitempty"`
}

// maxSpeechDurationMs is the largest duration in milliseconds a time.Duration holds.
const maxSpeechDurationMs = float64(math.MaxInt64 / int64(time.Millisecond))

// SpeechDuration returns the declared speech duration, if the service sent a
// positive one that fits in a time.Duration.
func (r *ChatResponse) SpeechDuration() (time.Duration, bool) {
	if r == nil || r.SpeechDurationMs == nil {
		return 0, false
	}
	ms := *r.SpeechDurationMs
	if ms <= 0 || ms >= maxSpeechDurationMs {
		return 0, false
	}
	return time.Duration(ms * float64(time.Millisecond)), true
}

// ConversationContext summarizes the service's view of the conversation so far.
type ConversationContext struct {
	TotalConversations int      `json:"total_conversations"`
	RecentTopics       []string `json:"recent_topics"`
	ConversationStyle  string   `json:"conversation_style"`
}

// skillRequest is the request payload for POST /execute-skill.
type skillRequest struct {
	SkillID string `json:"skill_id"`
	Query   string `json:"query"`
}

// SkillResult is the outcome of a skill execution.
// Success=false is a logical failure reported by the service, not a transport error.
type SkillResult struct {
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Skill describes one entry of the skills catalogue.
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type skillsResponse struct {
	Skills []Skill `json:"skills"`
}

// Profile is the free-form user profile document.
type Profile map[string]json.RawMessage

// VoiceEvent is a message received on the voice socket.
type VoiceEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
