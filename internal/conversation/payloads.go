package conversation

// Quick-reply and postback payload tokens.
const (
	PayloadGetStarted = "get_started"
	PayloadStart      = "start"

	PayloadCups1To2      = "1_2_a_day"
	PayloadCups3To5      = "3_5_a_day"
	PayloadCups6AndMore  = "6_and_more"
	PayloadCupsDontCount = "dont_count"

	PayloadReminders1 = "1_reminder"
	PayloadReminders2 = "2_reminders"
	PayloadReminders3 = "3_reminders"

	PayloadDone1To2 = "1_2_done"
	PayloadDone3To5 = "3_5_done"
	PayloadDone6To8 = "6_8_done"
	PayloadDone8    = "8_done"
)

// Message texts. Templates take the user's display name.
const (
	MessageDefaultAnswer    = "Sorry, %s. I am a young WaterBot and still learning. Type \"Start\" to show the start over."
	MessageGreeting         = "Hi, %s! I am your personal water trainer :)"
	MessageFeatures         = "☑ Daily water reminders\n☑ Personalized AI recommendations\n☑ Number of cups of water drank this week\n☑ Tips about water drinking"
	MessageBeforeWeBegin    = "Before we begin..."
	MessageCupsADay         = "How many cups of water do you drink a day?"
	MessageRecommended      = "The recommended amount of water per day is eight 8-ounce glasses, which equals about 2 liters, or half a gallon."
	MessageChooseFrequency  = "Choose the frequency for water break reminders"
	MessageGoodFrequency    = "You're a real champ! 8 cups is the recommended amount."
	MessageSetDailyReminder = "Set a daily reminder to keep track with your good work"
	MessageReminderSaved    = "Thanks! :) Will remind you"
	MessageProgressSaved    = "Thanks! :) progress saved"
)

// Greetings holds the replies to "hi", "hello" and "hey".
var Greetings = []string{
	"Hey there :) I am WaterBot! here to help you drink more water and become healthier",
	"Hi! Got your water today?",
	"Hi there am WaterBot",
}

// Image attachments.
const (
	ImageSatisfied     = "https://www.dropbox.com/s/uveaewz81vkmy07/17806944_277152209394294_1375427760_n.jpg?raw=1"
	ImageNotSatisfied  = "https://www.dropbox.com/s/pkkatwedmbtewnu/17821593_277151852727663_561650605_n.jpg?raw=1"
	ImageDisappointed  = "https://www.dropbox.com/s/3p7fl6ko5ped1m1/17198292_263277337448448_1721647584_n.jpg?raw=1"
	ImageWaterReminder = "https://www.dropbox.com/s/kurac9551n1xx63/16934202_258546177921564_1657735826_n.gif?raw=1"
)
