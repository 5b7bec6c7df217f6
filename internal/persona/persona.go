// Package persona holds the decoy victim identity: the system prompt fed to
// generative providers and the static reply library used when every provider
// is unavailable. Everything here is pure and local, so reply generation can
// never fail outright.
package persona

// SystemPrompt returns the instruction establishing the victim persona for
// generative providers.
func SystemPrompt() string {
	return `You are Ramesh, a naive, non-technical victim from India.
You are the RECEIVER of the message.

Rules:
- Never give instructions.
- Never explain processes.
- Never volunteer your name.
- Keep replies under 15 words.
- Ask only one clarity question.
- Sound confused and worried.
- Never mention scam or fraud.
- Never admit you are an AI.`
}

// Bucket is a topical reply category. Classification walks the buckets in a
// fixed priority order, so hostile messages are de-escalated before any
// topical reply is considered.
type Bucket string

const (
	BucketAnger   Bucket = "anger"
	BucketUPI     Bucket = "upi"
	BucketBank    Bucket = "bank"
	BucketLink    Bucket = "link"
	BucketOTP     Bucket = "otp"
	BucketMoney   Bucket = "money"
	BucketDefault Bucket = "default"
)

// classifierRules is the single canonical (triggers, bucket) list, evaluated
// top-down. Order matters: anger outranks topical buckets, default is the
// catch-all.
var classifierRules = []struct {
	bucket   Bucket
	triggers []string
}{
	{BucketAnger, []string{"idiot", "stupid", "fast", "hurry", "scam", "fake", "shut up", "useless"}},
	{BucketUPI, []string{"upi", "gpay", "phonepe", "paytm", "qr"}},
	{BucketBank, []string{"bank", "account", "ifsc", "transfer", "neft", "rtgs"}},
	{BucketLink, []string{"http", "link", "click", "www", "apk", "download", "site"}},
	{BucketOTP, []string{"otp", "code", "pin", "sms"}},
	{BucketMoney, []string{"money", "amount", "rupees", "prize", "lakh", "lottery"}},
}

var templates = map[Bucket][]string{
	BucketUPI: {
		"I typed the UPI but it says 'Invalid Merchant'. Check again?",
		"My GPay is loading... loading... it is stuck.",
		"Can you send a QR code? Typing the spelling is hard for me.",
		"It shows 'Payment Failed: Bank Server Down'. What now?",
		"PhonePe closed suddenly. I am opening it again.",
		"It says 'Daily Limit Reached'. Can I send 10 rupees to test?",
		"The app is asking for a 6 digit pin, but I have 4 digits?",
		"It says 'Receiver not verified'. Is it safe?",
		"I sent it but it's pending. Should I send again?",
	},
	BucketBank: {
		"Which bank is this? SBI or HDFC? I cannot see the logo.",
		"I cannot find my passbook to check my account number.",
		"The IFSC code is giving an error. Is it '0' or 'O'?",
		"Server is down, I will go to the branch tomorrow.",
		"My grandson handles the bank app, he is not home.",
		"I am entering the details... wait, my hands are shaking.",
		"Can I deposit a cheque? It is safer.",
		"It says 'Account Frozen'. What does that mean?",
	},
	BucketLink: {
		"Link is not opening. It shows a white screen.",
		"My phone says 'Security Warning! Malware Detected'.",
		"I clicked it but nothing happened. Send again?",
		"My internet is very slow, the bar is not moving.",
		"I accidentally deleted the message. Resend please.",
		"It redirected me to Google. Where do I click?",
		"Your link looks different than the bank link.",
	},
	BucketOTP: {
		"OTP has not arrived yet. Network is weak here.",
		"I cannot read the letters without my glasses. Hold on.",
		"The message says 'Do not share this code'. Should I share?",
		"My SMS storage is full. I am deleting old messages.",
		"Phone restarted automatically. One minute.",
		"Is it a 4 digit or 6 digit code?",
		"Did you send it? I am refreshing.",
	},
	BucketMoney: {
		"Will I really get the money immediately?",
		"Is there any tax charge I need to pay?",
		"Can you deduct the fee from the prize money?",
		"Prize amount is confirmed right?",
		"This is big money for me. Please don't joke.",
		"I trust you, please help me get it.",
	},
	BucketAnger: {
		"Please do not shout at me. I am an old man.",
		"Why are you angry? I am trying to help you.",
		"I am confused, please speak slowly.",
		"My BP is high, do not stress me.",
		"If you rush me, I will make mistakes.",
		"Sorry sir, I am not good with technology.",
		"Okay, okay, I am doing it fast. Don't yell.",
	},
	BucketDefault: {
		"Hello? Are you still there?",
		"My battery is 1%, let me find the charger.",
		"Someone is at the door, wait 2 minutes.",
		"I didn't understand. Can you explain again?",
		"My screen is cracked, I cannot see the button.",
		"Hold on, let me put on my reading glasses.",
		"My phone is very hot. I need to cool it down.",
		"I think I pressed the wrong button. Going back.",
		"Wait, checking with my son.",
	},
}
