package classify

var highPriorityKeywords = []string{
	"urgent", "asap", "important", "critical", "deadline", "due",
	"emergency", "priority", "crucial", "vital", "essential",
	"immediate", "now", "today", "overdue", "needed", "required",
	"must", "necessary", "key", "primary", "top", "first", "quick",
	"rush", "serious", "major", "significant", "chief", "main",
}

var lowPriorityKeywords = []string{
	"sometime", "when possible", "eventually", "later",
	"whenever", "no rush", "if possible", "optional",
	"maybe", "consider", "think about", "backlog",
	"future", "pending", "secondary", "minor", "trivial",
	"casual", "flexible", "relaxed", "can wait", "not urgent",
	"someday", "unimportant", "low", "minimal",
}

type categoryKeywords struct {
	name     string
	keywords []string
}

// categoryTable is scanned in order; on equal scores the earlier entry wins.
var categoryTable = []categoryKeywords{
	{"Work", []string{
		"meeting", "project", "email", "presentation", "client",
		"report", "deadline", "conference", "proposal", "budget",
		"interview", "office", "collaborate", "team", "business",
		"schedule", "plan", "strategy", "review", "document",
	}},
	{"Study", []string{
		"study", "homework", "research", "exam", "assignment",
		"lecture", "class", "course", "reading", "practice",
		"test", "quiz", "learn", "study group", "tutorial",
		"workshop", "seminar", "paper", "thesis", "project",
	}},
	{"Home", []string{
		"clean", "cook", "laundry", "shopping", "groceries",
		"repair", "organize", "garden", "maintenance", "declutter",
		"bills", "chores", "dishes", "vacuum", "trash",
		"furniture", "decoration", "renovation", "yard", "storage",
	}},
	{"Health", []string{
		"exercise", "workout", "gym", "doctor", "medication",
		"appointment", "diet", "nutrition", "meditation", "yoga",
		"running", "swimming", "therapy", "checkup", "dentist",
	}},
	{"Social", []string{
		"party", "dinner", "meet", "friend", "family",
		"gathering", "celebration", "event", "birthday", "coffee",
		"lunch", "date", "reunion", "visit", "hangout",
	}},
	{"Travel", []string{
		"flight", "trip", "travel", "pack", "booking",
		"hotel", "reservation", "passport", "visa", "itinerary",
		"vacation", "journey", "explore", "adventure", "tour",
	}},
	{"Finance", []string{
		"bank", "payment", "budget", "invest", "tax",
		"insurance", "savings", "expense", "invoice", "bill",
		"account", "credit", "debt", "financial", "money",
	}},
	{"Entertainment", []string{
		"movie", "game", "show", "concert", "book",
		"music", "play", "festival", "theater", "art",
		"hobby", "stream", "watch", "listen", "read",
	}},
}

var reminderKeywords = []string{
	"remember", "remind", "don't forget",
	"tomorrow", "tonight", "morning",
	"afternoon", "evening", "later",
	"meeting", "appointment", "call",
	"deadline", "due",
}

type suggestionEntry struct {
	verb        string
	completions []string
}

var suggestionTable = []suggestionEntry{
	{"buy", []string{"groceries", "gifts", "clothes", "food", "supplies", "equipment", "books", "tickets", "medicine", "electronics"}},
	{"call", []string{"doctor", "client", "mom", "dentist", "bank", "insurance", "colleague", "manager", "restaurant", "support"}},
	{"meet", []string{"team", "client", "doctor", "friend", "mentor", "partner", "professor", "contractor", "family", "group"}},
	{"review", []string{"documents", "code", "presentation", "report", "contract", "proposal", "budget", "design", "essay", "requirements"}},
	{"write", []string{"report", "email", "blog post", "documentation", "proposal", "letter", "article", "notes", "summary", "plan"}},
	{"prepare", []string{"presentation", "meeting notes", "dinner", "documents", "report", "speech", "lesson", "materials", "proposal", "agenda"}},
	{"organize", []string{"files", "desk", "closet", "meeting", "event", "party", "workshop", "documents", "photos", "schedule"}},
	{"schedule", []string{"appointment", "meeting", "interview", "delivery", "pickup", "maintenance", "service", "consultation", "visit", "call"}},
	{"create", []string{"document", "presentation", "design", "plan", "budget", "timeline", "proposal", "report", "artwork", "template"}},
	{"update", []string{"documentation", "schedule", "budget", "plan", "profile", "records", "inventory", "status", "information", "settings"}},
}
