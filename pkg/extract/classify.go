package extract

import "regexp"

var (
	bondholderPattern = regexp.MustCompile(`(?i)bondholder|noteholder|obligataire`)
	egmPattern        = regexp.MustCompile(`(?i)extraordinary|extraordinaire|\bEGM\b`)
	noticePattern     = regexp.MustCompile(`(?i)notice|avis|convocation`)

	englishMarkers = regexp.MustCompile(`(?i)\b(?:the|and|of)\b`)
	frenchMarkers  = regexp.MustCompile(`(?i)\b(?:le|la|les|et|des|du)\b`)
)

// ClassifyMeeting assigns the meeting type. Bondholder signals take priority
// over extraordinary ones; anything else is an annual general meeting.
func ClassifyMeeting(text string) MeetingType {
	switch {
	case bondholderPattern.MatchString(text):
		return MeetingTypeBondholder
	case egmPattern.MatchString(text):
		return MeetingTypeEGM
	default:
		return MeetingTypeAGM
	}
}

// ClassifyDocument reports whether the text reads as a meeting notice.
func ClassifyDocument(text string) DocumentType {
	if noticePattern.MatchString(text) {
		return DocumentTypeNotice
	}
	return DocumentTypeOther
}

// DetectLanguage scores English against French function words. French wins
// only with a strictly higher score, so empty or ambiguous text is English.
func DetectLanguage(text string) Language {
	en := len(englishMarkers.FindAllStringIndex(text, -1))
	fr := len(frenchMarkers.FindAllStringIndex(text, -1))
	if fr > en {
		return LanguageFR
	}
	return LanguageEN
}
