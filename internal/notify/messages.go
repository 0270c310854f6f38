package notify

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

// Notification types, also sent to the app as data.type.
const (
	TypeInvestorInterested = "investor_interested"
	TypeInvestorDeclined   = "investor_declined"
	TypeNewQuestion        = "new_question"
	TypeNewMessage         = "new_message"
	TypeTalentInterest     = "talent_interest"
)

// App screens a notification opens.
const (
	ScreenFounderThread  = "FounderThread"
	ScreenInvestorThread = "InvestorThread"
	ScreenTalentThread   = "TalentThread"
)

// displayName trims name, title-cases all-lowercase input and falls back when
// nothing is left.
func displayName(name, fallback string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return fallback
	}
	if name == strings.ToLower(name) {
		return cases.Title(language.English).String(name)
	}
	return name
}

// statusKey identifies one status transition. A thread may return to a status
// it held before, and each return is a separate notification.
func statusKey(threadID string, from, to domain.ThreadStatus, at time.Time) string {
	return "status:" + threadID + ":" + string(from) + ">" + string(to) + ":" + strconv.FormatInt(at.UnixNano(), 10)
}

func threadData(kind, threadID, screen string) map[string]any {
	return map[string]any{"type": kind, "thread_id": threadID, "screen": screen}
}

// InvestorInterested tells a founder that an investor moved the thread from
// status from to interested at changedAt.
func InvestorInterested(token, investor, startup, threadID string, from domain.ThreadStatus, changedAt time.Time) Notification {
	return Notification{
		Type:     TypeInvestorInterested,
		Token:    token,
		Title:    "An investor is interested!",
		Body:     displayName(investor, "An investor") + " wants to connect about " + displayName(startup, "your startup"),
		Data:     threadData(TypeInvestorInterested, threadID, ScreenFounderThread),
		DedupKey: statusKey(threadID, from, domain.ThreadInterested, changedAt),
	}
}

// InvestorDeclined tells a founder that an investor passed.
func InvestorDeclined(token, investor, startup, threadID string, from domain.ThreadStatus, changedAt time.Time) Notification {
	return Notification{
		Type:     TypeInvestorDeclined,
		Token:    token,
		Title:    "Investor response received",
		Body:     displayName(investor, "An investor") + " responded to your Q&A for " + displayName(startup, "your startup"),
		Data:     threadData(TypeInvestorDeclined, threadID, ScreenFounderThread),
		DedupKey: statusKey(threadID, from, domain.ThreadDeclined, changedAt),
	}
}

// NewQuestion tells a founder that an investor asked something.
func NewQuestion(token, investor, startup, threadID, messageID string) Notification {
	return Notification{
		Type:     TypeNewQuestion,
		Token:    token,
		Title:    "New question from an investor",
		Body:     displayName(investor, "An investor") + " asked about " + displayName(startup, "your startup"),
		Data:     threadData(TypeNewQuestion, threadID, ScreenFounderThread),
		DedupKey: "message:" + messageID,
	}
}

// FounderReplied tells an investor that the founder answered.
func FounderReplied(token, founder, startup, threadID, messageID string) Notification {
	return Notification{
		Type:     TypeNewMessage,
		Token:    token,
		Title:    displayName(startup, "The startup") + " replied",
		Body:     displayName(founder, "The founder") + " answered your question",
		Data:     threadData(TypeNewMessage, threadID, ScreenInvestorThread),
		DedupKey: "message:" + messageID,
	}
}

// TalentInterest tells a talent that a recruiter reached out.
func TalentInterest(token, recruiter, company, threadID, messageID string) Notification {
	body := displayName(recruiter, "Someone")
	if c := displayName(company, ""); c != "" {
		body += " from " + c
	}
	return Notification{
		Type:     TypeTalentInterest,
		Token:    token,
		Title:    "Someone's interested!",
		Body:     body + " wants to connect",
		Data:     threadData(TypeTalentInterest, threadID, ScreenTalentThread),
		DedupKey: "message:" + messageID,
	}
}

// TalentReplied tells a recruiter that the talent answered.
func TalentReplied(token, talent, threadID, messageID string) Notification {
	return Notification{
		Type:     TypeNewMessage,
		Token:    token,
		Title:    displayName(talent, "A candidate") + " replied",
		Body:     "You have a new message",
		Data:     threadData(TypeNewMessage, threadID, ScreenTalentThread),
		DedupKey: "message:" + messageID,
	}
}
