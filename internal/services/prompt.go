package services

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-celebrations-backend/internal/ai"
	"github.com/tbourn/go-celebrations-backend/internal/domain"
)

// Wish types accepted by POST /wish.
const (
	WishBirthday           = "birthday"
	WishWorkAnniversary    = "work-anniversary"
	WishWeddingAnniversary = "wedding-anniversary"
	WishPromotion          = "promotion"
	WishRetirement         = "retirement"
	WishFriendship         = "friendship"
	WishRelationship       = "relationship"
	WishMilestone          = "milestone"
	WishCustom             = "custom"
)

// Tones accepted by POST /wish.
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneWarm         = "warm"
	ToneHumorous     = "humorous"
	ToneFormal       = "formal"
)

var typeContexts = map[string]string{
	WishBirthday:           "birthday",
	WishWorkAnniversary:    "work anniversary",
	WishWeddingAnniversary: "wedding anniversary",
	WishPromotion:          "promotion celebration",
	WishRetirement:         "retirement celebration",
	WishFriendship:         "friendship anniversary",
	WishRelationship:       "relationship anniversary",
	WishMilestone:          "milestone anniversary",
	WishCustom:             "special anniversary",
}

var toneInstructions = map[string]string{
	ToneProfessional: "Use a professional, respectful tone appropriate for workplace relationships. Keep it formal but warm.",
	ToneFriendly:     "Use a friendly, approachable tone. Be warm and personable while maintaining respect.",
	ToneWarm:         "Use a warm, heartfelt tone. Express genuine care and affection in your message.",
	ToneHumorous:     "Use a light, humorous tone with appropriate jokes or playful language. Keep it tasteful and respectful.",
	ToneFormal:       "Use a formal, dignified tone. Be respectful and proper while still being celebratory.",
}

// relationshipPhrases is ordered so partial matches are deterministic.
var relationshipPhrases = []struct{ key, phrase string }{
	{"spouse", "as their loving spouse"},
	{"husband", "as their loving husband"},
	{"wife", "as their loving wife"},
	{"partner", "as their loving partner"},
	{"parent", "as their parent"},
	{"mother", "as their mother"},
	{"father", "as their father"},
	{"child", "as their child"},
	{"son", "as their son"},
	{"daughter", "as their daughter"},
	{"sibling", "as their sibling"},
	{"brother", "as their brother"},
	{"sister", "as their sister"},
	{"friend", "as their dear friend"},
	{"colleague", "as their colleague"},
	{"coworker", "as their coworker"},
	{"relative", "as their family member"},
	{"family", "as their family member"},
	{"mentor", "as their mentor"},
	{"teacher", "as their teacher"},
	{"boss", "as their boss"},
	{"manager", "as their manager"},
	{"neighbor", "as their neighbor"},
	{"pastor", "as their pastor"},
	{"minister", "as their minister"},
}

type verse struct{ Text, Ref string }

var weddingVerses = []verse{
	{"Love is patient, love is kind. It does not envy, it does not boast, it is not proud.", "1 Corinthians 13:4"},
	{"Two are better than one, because they have a good return for their labor.", "Ecclesiastes 4:9"},
	{"Therefore what God has joined together, let no one separate.", "Mark 10:9"},
	{"Above all, love each other deeply, because love covers over a multitude of sins.", "1 Peter 4:8"},
	{"And now these three remain: faith, hope and love. But the greatest of these is love.", "1 Corinthians 13:13"},
	{"Many waters cannot quench love; rivers cannot sweep it away.", "Song of Songs 8:7"},
	{"Let love and faithfulness never leave you; bind them around your neck, write them on the tablet of your heart.", "Proverbs 3:3"},
	{"Be completely humble and gentle; be patient, bearing with one another in love.", "Ephesians 4:2"},
}

var blessingVerses = []verse{
	{"The Lord bless you and keep you; the Lord make his face shine on you and be gracious to you.", "Numbers 6:24-25"},
	{"For I know the plans I have for you, declares the Lord, plans to prosper you and not to harm you, to give you hope and a future.", "Jeremiah 29:11"},
	{"This is the day the Lord has made; let us rejoice and be glad in it.", "Psalm 118:24"},
	{"Every good and perfect gift is from above, coming down from the Father of the heavenly lights.", "James 1:17"},
	{"Delight yourself in the Lord, and he will give you the desires of your heart.", "Psalm 37:4"},
	{"And we know that in all things God works for the good of those who love him.", "Romans 8:28"},
}

// pickIndex is replaced in tests for deterministic verse selection.
var pickIndex = rand.IntN

func pickVerse(vs []verse) verse {
	return vs[pickIndex(len(vs))]
}

var titleCaser = cases.Title(language.English)

// TypeContext maps a wish type to its prose form.
func TypeContext(wishType string) string {
	if s, ok := typeContexts[wishType]; ok {
		return s
	}
	return "anniversary"
}

// ToneInstruction maps a tone to the instruction sent to the model.
func ToneInstruction(tone string) string {
	if s, ok := toneInstructions[tone]; ok {
		return s
	}
	return toneInstructions[ToneWarm]
}

// RelationshipContext returns "as their ..." for the author's relationship,
// trying an exact match, then a substring match either way, then the raw
// text.
func RelationshipContext(rel string) string {
	low := strings.ToLower(strings.TrimSpace(rel))
	for _, r := range relationshipPhrases {
		if r.key == low {
			return r.phrase
		}
	}
	if low != "" {
		for _, r := range relationshipPhrases {
			if strings.Contains(low, r.key) || strings.Contains(r.key, low) {
				return r.phrase
			}
		}
	}
	return "as their " + strings.TrimSpace(rel)
}

const wishSystemPrompt = "You are a Christian pastor writing personalized celebration wishes. " +
	"Your messages should be warm, godly, and include appropriate Bible verses. " +
	"Return ONLY the wish content without any introductory or closing text."

// WishMessages builds the provider-agnostic conversation for a wish.
func WishMessages(req WishRequest) []ai.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a Christian %s wish for %s.\n", TypeContext(req.AnniversaryType), req.Name)
	fmt.Fprintf(&b, "Write this %s.\n", RelationshipContext(req.Relationship))
	fmt.Fprintf(&b, "Tone: %s\n", ToneInstruction(req.Tone))
	if c := strings.TrimSpace(req.Context); c != "" {
		fmt.Fprintf(&b, "Additional context: %s\n", c)
	}
	b.WriteString("The wish should:\n")
	b.WriteString("- Be heartfelt and godly\n")
	b.WriteString("- Include a relevant Bible verse appropriate for the occasion\n")
	b.WriteString("- Be 2-4 sentences long\n")
	b.WriteString("- Express God's blessings and love\n\n")
	b.WriteString("Format: [Wish Message] - [Bible Verse] ([Reference])")
	return []ai.Message{
		{Role: ai.RoleSystem, Content: wishSystemPrompt},
		{Role: ai.RoleUser, Content: b.String()},
	}
}

// WishTemplate renders the offline fallback for a wish request.
func WishTemplate(req WishRequest) string {
	var msg string
	switch req.AnniversaryType {
	case WishBirthday:
		msg = fmt.Sprintf("Happy Birthday, %s! May God's love and grace shine upon you today and always.", req.Name)
	case WishPromotion:
		msg = fmt.Sprintf("Congratulations on your promotion, %s! May God continue to bless your career and use your talents for His glory.", req.Name)
	case WishRetirement:
		msg = fmt.Sprintf("Congratulations on your retirement, %s! May God bless this new chapter of your life with peace, joy, and new opportunities to serve Him.", req.Name)
	default:
		bond := "your bond"
		switch strings.ToLower(strings.TrimSpace(req.Relationship)) {
		case "spouse", "husband", "wife", "partner":
			bond = "your beautiful marriage"
		case "parent", "mother", "father":
			bond = "your loving relationship"
		case "friend":
			bond = "your wonderful friendship"
		case "colleague", "coworker", "boss", "manager":
			bond = "your professional relationship"
		}
		msg = fmt.Sprintf("Happy %s, %s! May God's love and grace continue to strengthen %s.",
			titleCaser.String(TypeContext(req.AnniversaryType)), req.Name, bond)
	}
	if c := strings.TrimSpace(req.Context); c != "" {
		msg += " " + c
	}
	pool := blessingVerses
	if req.AnniversaryType == WishWeddingAnniversary || req.AnniversaryType == WishRelationship {
		pool = weddingVerses
	}
	v := pickVerse(pool)
	return fmt.Sprintf("%s - %s (%s)", msg, v.Text, v.Ref)
}

// Celebration describes a due roster record in prompt-ready form.
type Celebration struct {
	Record     domain.RosterRecord
	AgeOrYears int // 0 when the year is unknown
}

// Text renders a short label such as "Ann's birthday (turning 40)".
func (c Celebration) Text() string {
	r := c.Record
	if r.EventType == domain.EventAnniversary {
		s := r.Name + "'s anniversary"
		if c.AgeOrYears > 0 {
			s += fmt.Sprintf(" (%d years)", c.AgeOrYears)
		}
		return s
	}
	s := r.Name + "'s birthday"
	if c.AgeOrYears > 0 {
		s += fmt.Sprintf(" (turning %d)", c.AgeOrYears)
	}
	return s
}

const celebrationSystemPrompt = "You are a Christian pastor writing celebration messages for church members. " +
	"Your messages should be warm, godly, and include appropriate Bible verses. " +
	"Return ONLY the message content."

func coupleName(r domain.RosterRecord) string {
	if r.Spouse != nil && strings.TrimSpace(*r.Spouse) != "" {
		return r.Name + " and " + strings.TrimSpace(*r.Spouse)
	}
	return r.Name
}

// CelebrationMessages builds the conversation for a group celebration post.
func CelebrationMessages(c Celebration) []ai.Message {
	var b strings.Builder
	r := c.Record
	if r.EventType == domain.EventAnniversary {
		fmt.Fprintf(&b, "Generate a warm, Christian anniversary message for %s.\n", coupleName(r))
		if c.AgeOrYears > 0 {
			fmt.Fprintf(&b, "They are celebrating %d years of marriage.\n", c.AgeOrYears)
		}
		b.WriteString("The message should:\n")
		b.WriteString("- Be heartfelt and godly\n")
		b.WriteString("- Include a relevant Bible verse about love or marriage\n")
		b.WriteString("- Be appropriate for a church group\n")
		b.WriteString("- Be 2-3 sentences long\n")
		b.WriteString("- Celebrate their union and God's blessing on their marriage\n\n")
	} else {
		fmt.Fprintf(&b, "Generate a warm, Christian birthday message for %s.\n", r.Name)
		if c.AgeOrYears > 0 {
			fmt.Fprintf(&b, "They are turning %d years old.\n", c.AgeOrYears)
		}
		b.WriteString("The message should:\n")
		b.WriteString("- Be heartfelt and godly\n")
		b.WriteString("- Include a relevant Bible verse\n")
		b.WriteString("- Be appropriate for a church group\n")
		b.WriteString("- Be 2-3 sentences long\n")
		b.WriteString("- Express God's blessings and love\n\n")
	}
	b.WriteString("Format: [Message] - [Bible Verse] ([Reference])")
	return []ai.Message{
		{Role: ai.RoleSystem, Content: celebrationSystemPrompt},
		{Role: ai.RoleUser, Content: b.String()},
	}
}

// CelebrationTemplate renders the offline fallback for a group post.
func CelebrationTemplate(c Celebration) string {
	r := c.Record
	var msg string
	var pool []verse
	if r.EventType == domain.EventAnniversary {
		pool = weddingVerses
		if c.AgeOrYears > 0 {
			msg = fmt.Sprintf("Congratulations on %d wonderful years of marriage, %s! May God continue to bless your union.", c.AgeOrYears, coupleName(r))
		} else {
			msg = fmt.Sprintf("Happy Anniversary, %s! May God's love continue to strengthen your marriage.", coupleName(r))
		}
	} else {
		pool = blessingVerses
		if c.AgeOrYears > 0 {
			msg = fmt.Sprintf("Happy %s Birthday, %s! May God continue to bless you abundantly in this new year of life.", ordinal(c.AgeOrYears), r.Name)
		} else {
			msg = fmt.Sprintf("Happy Birthday, %s! May God's love and grace shine upon you today and always.", r.Name)
		}
	}
	v := pickVerse(pool)
	return fmt.Sprintf("%s - %s (%s)", msg, v.Text, v.Ref)
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
