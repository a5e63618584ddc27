package models

import "strings"

// Pipeline stages, in funnel order.
const (
	StageIncoming    = "Entrante"
	StageContacted   = "Contactado"
	StageNegotiation = "Negociación"
	StageWon         = "Trato Ganado"
	StageLost        = "Trato Perdido"

	// Labels found in older data.
	legacyStageConversation = "Conversación"
	legacyStageClosedLost   = "Cerrado Perdido"
)

// StageOrder is the fixed pipeline and the bucket order of the funnel report.
var StageOrder = []string{StageIncoming, StageContacted, StageNegotiation, StageWon, StageLost}

// LostStages lists every stage value that marks a dead deal.
var LostStages = []string{StageLost, legacyStageClosedLost}

// NormalizeStage maps legacy stage labels onto the current pipeline:
// a blank stage is the first stage and "Conversación" became "Contactado".
// Any other value is returned unchanged.
func NormalizeStage(stage string) string {
	switch strings.TrimSpace(stage) {
	case "":
		return StageOrder[0]
	case legacyStageConversation:
		return StageContacted
	default:
		return stage
	}
}

// IsValidStage reports whether stage is one of StageOrder.
func IsValidStage(stage string) bool {
	for _, s := range StageOrder {
		if s == stage {
			return true
		}
	}
	return false
}

// IsLostStage reports whether stage marks a dead deal.
func IsLostStage(stage string) bool {
	for _, s := range LostStages {
		if s == stage {
			return true
		}
	}
	return false
}

// Task statuses.
const (
	TaskPending    = "pendiente"
	TaskInProgress = "en_progreso"
	TaskCompleted  = "completada"
	TaskClosed     = "cerrada"
)

// TaskStatuses lists every accepted task status.
var TaskStatuses = []string{TaskPending, TaskInProgress, TaskCompleted, TaskClosed}

// FinishedStatuses are the statuses that stamp completed_at.
var FinishedStatuses = []string{TaskCompleted, TaskClosed}

func IsValidTaskStatus(status string) bool {
	for _, s := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsFinishedStatus(status string) bool {
	return status == TaskCompleted || status == TaskClosed
}

// Communication channels.
const (
	ChannelEmail    = "email"
	ChannelCall     = "llamada"
	ChannelWhatsApp = "whatsapp"
	ChannelMeeting  = "reunion"
)

var Channels = []string{ChannelEmail, ChannelCall, ChannelWhatsApp, ChannelMeeting}

func IsValidChannel(channel string) bool {
	for _, c := range Channels {
		if c == channel {
			return true
		}
	}
	return false
}
