// Package reminders sends the daily water reminders, either per user local
// time (threshold mode) or at fixed server times (fixed mode).
package reminders

import (
	"fmt"
	"math"

	"github.com/wolfman30/waterbot/internal/conversation"
	"github.com/wolfman30/waterbot/internal/messenger"
	"github.com/wolfman30/waterbot/internal/outbound"
)

// Reminder is one kind of daily notification.
type Reminder struct {
	Name string
	// MinFrequency is the lowest frequency that receives it; 0 means every
	// known user.
	MinFrequency int
	// ExactFrequency restricts threshold mode to users with exactly MinFrequency.
	ExactFrequency bool
	// LocalHour is the user's local hour bucket in threshold mode.
	LocalHour int
	// FixedSpec is the server-time cron spec (with seconds) used in fixed mode.
	FixedSpec    string
	Text         string
	QuickReplies []messenger.QuickReply
}

// Built-in reminders.
var (
	Morning = Reminder{
		Name:         "morning",
		MinFrequency: 1,
		LocalHour:    10,
		FixedSpec:    "3 0 8 * * *",
		Text:         "Good morning %s :) don't forget drink water today",
	}
	Afternoon = Reminder{
		Name:         "afternoon",
		MinFrequency: 2,
		LocalHour:    14,
		FixedSpec:    "3 0 12 * * *",
		Text:         "Hey %s ;) don't forget drink water!",
	}
	Evening = Reminder{
		Name:           "evening",
		MinFrequency:   3,
		ExactFrequency: true,
		LocalHour:      18,
		FixedSpec:      "3 0 15 * * *",
		Text:           "Hi %s ;) doing well with your water challenge?",
	}
	CheckIn = Reminder{
		Name:      "checkin",
		LocalHour: 20,
		FixedSpec: "3 0 17 * * *",
		Text:      "So how many glasses of water have you drank today %s?",
		QuickReplies: []messenger.QuickReply{
			messenger.TextQuickReply("1-2", conversation.PayloadDone1To2),
			messenger.TextQuickReply("3-5", conversation.PayloadDone3To5),
			messenger.TextQuickReply("6-8", conversation.PayloadDone6To8),
			messenger.TextQuickReply("8+", conversation.PayloadDone8),
		},
	}
)

// All lists the reminders in bucket priority order.
var All = []Reminder{Morning, Afternoon, Evening, CheckIn}

// Lookup returns the reminder with the given name.
func Lookup(name string) (Reminder, bool) {
	for _, r := range All {
		if r.Name == name {
			return r, true
		}
	}
	return Reminder{}, false
}

func (r Reminder) matchesFrequency(frequency int) bool {
	if r.ExactFrequency {
		return frequency == r.MinFrequency
	}
	return frequency >= r.MinFrequency
}

func (r Reminder) inBucket(localHour float64) bool {
	return localHour >= float64(r.LocalHour) && localHour < float64(r.LocalHour+1)
}

// Select returns the reminder due for a user at localHour, first match wins.
func Select(frequency int, localHour float64) (Reminder, bool) {
	for _, r := range All {
		if r.matchesFrequency(frequency) && r.inBucket(localHour) {
			return r, true
		}
	}
	return Reminder{}, false
}

// LocalHour converts a UTC hour (fractional) and a UTC offset in hours into
// the user's local hour in [0, 24).
func LocalHour(utcHour, offset float64) float64 {
	h := math.Mod(utcHour+offset, 24)
	if h < 0 {
		h += 24
	}
	return h
}

// Actions builds the reminder messages for one user.
func (r Reminder) Actions(userID, name string) []outbound.Action {
	return []outbound.Action{
		outbound.SendImage{RecipientID: userID, ImageURL: conversation.ImageWaterReminder},
		outbound.SendText{RecipientID: userID, Text: fmt.Sprintf(r.Text, name), QuickReplies: r.QuickReplies},
	}
}
