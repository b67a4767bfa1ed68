package conversation

import (
	"fmt"

	"github.com/wolfman30/waterbot/internal/messenger"
	"github.com/wolfman30/waterbot/internal/outbound"
)

func getStartedSequence(senderID, name string) []outbound.Action {
	return []outbound.Action{
		outbound.SendText{RecipientID: senderID, Text: fmt.Sprintf(MessageGreeting, name)},
		outbound.SendText{
			RecipientID:  senderID,
			Text:         MessageFeatures,
			QuickReplies: []messenger.QuickReply{messenger.TextQuickReply("Let's Start!", PayloadStart)},
		},
	}
}

func startSequence(senderID string) []outbound.Action {
	return []outbound.Action{
		outbound.SendText{RecipientID: senderID, Text: MessageBeforeWeBegin},
		outbound.SendText{
			RecipientID: senderID,
			Text:        MessageCupsADay,
			QuickReplies: []messenger.QuickReply{
				messenger.TextQuickReply("1-2 cups", PayloadCups1To2),
				messenger.TextQuickReply("3-5 cups", PayloadCups3To5),
				messenger.TextQuickReply("6 and more", PayloadCups6AndMore),
				messenger.TextQuickReply("I don't count", PayloadCupsDontCount),
			},
		},
	}
}

// cupsADaySequence reacts to the cups-per-day answer. Users who already drink
// enough get the reminder offer instead of the recommendation tail.
func cupsADaySequence(senderID, payload string) []outbound.Action {
	switch payload {
	case PayloadCups6AndMore:
		return []outbound.Action{
			outbound.SendImage{RecipientID: senderID, ImageURL: ImageSatisfied},
			outbound.SendText{RecipientID: senderID, Text: MessageGoodFrequency},
			outbound.SendText{
				RecipientID:  senderID,
				Text:         MessageSetDailyReminder,
				QuickReplies: []messenger.QuickReply{messenger.TextQuickReply("Once a day", PayloadReminders1)},
			},
		}
	case PayloadCups3To5:
		return append([]outbound.Action{outbound.SendImage{RecipientID: senderID, ImageURL: ImageNotSatisfied}}, recommendationTail(senderID)...)
	default:
		return append([]outbound.Action{outbound.SendImage{RecipientID: senderID, ImageURL: ImageDisappointed}}, recommendationTail(senderID)...)
	}
}

func recommendationTail(senderID string) []outbound.Action {
	return []outbound.Action{
		outbound.SendSenderAction{RecipientID: senderID, Action: messenger.SenderActionTypingOn},
		outbound.SendText{RecipientID: senderID, Text: MessageRecommended},
		outbound.SendSenderAction{RecipientID: senderID, Action: messenger.SenderActionTypingOn},
		outbound.SendText{
			RecipientID: senderID,
			Text:        MessageChooseFrequency,
			QuickReplies: []messenger.QuickReply{
				messenger.TextQuickReply("3 times a day", PayloadReminders3),
				messenger.TextQuickReply("Twice a day", PayloadReminders2),
				messenger.TextQuickReply("Once a day", PayloadReminders1),
			},
		},
	}
}

func textReply(senderID, text string) []outbound.Action {
	return []outbound.Action{outbound.SendText{RecipientID: senderID, Text: text}}
}
