// Package extract turns the plain text of a shareholder or bondholder meeting
// notice into a Record: classification tags, common fields, the agenda and
// the fields specific to each meeting type.
package extract

// MeetingType classifies the meeting a notice convenes.
type MeetingType string

const (
	MeetingTypeAGM        MeetingType = "AGM"
	MeetingTypeEGM        MeetingType = "EGM"
	MeetingTypeBondholder MeetingType = "BONDHOLDER"
)

// DocumentType classifies the document itself.
type DocumentType string

const (
	DocumentTypeNotice DocumentType = "Notice of Meeting"
	DocumentTypeOther  DocumentType = "Document"
)

// Language is the detected language of a notice.
type Language string

const (
	LanguageEN Language = "EN"
	LanguageFR Language = "FR"
)

// DefaultIssuer is the company name used when no issuer can be found.
const DefaultIssuer = "ISSUER"

// QuorumNotRequired is the quorum tag set when a notice waives the quorum.
const QuorumNotRequired = "No quorum required"

// Address holds the components of a meeting venue.
type Address struct {
	BuildingNumber string `json:"building_number,omitempty"`
	Street         string `json:"street,omitempty"`
	PostCode       string `json:"post_code,omitempty"`
	Town           string `json:"town,omitempty"`
}

// Contact holds the contact details published in a notice.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Resolution is one numbered agenda item.
type Resolution struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	InfoOnly bool   `json:"info_only"`
}

// AGMDetails holds fields only extracted for annual general meetings.
type AGMDetails struct {
	Dividend      string `json:"dividend,omitempty"`
	FiscalYearEnd string `json:"fiscal_year_end,omitempty"`
	Auditor       string `json:"auditor,omitempty"`
}

// EGMDetails holds fields only extracted for extraordinary general meetings.
type EGMDetails struct {
	Purposes    []string `json:"purposes,omitempty"`
	Liquidation bool     `json:"liquidation"`
}

// BondholderDetails holds fields only extracted for bondholder meetings.
type BondholderDetails struct {
	BondType        string   `json:"bond_type,omitempty"`
	MaturityYear    int      `json:"maturity_year,omitempty"`
	ClearingSystems []string `json:"clearing_systems,omitempty"`
	DeemedConsent   bool     `json:"deemed_consent"`
	MeetingCalls    []int    `json:"meeting_calls,omitempty"`
}

// Record is the structured content of one notice. Every field is optional;
// defaults are applied by the renderer, not here.
type Record struct {
	MeetingType  MeetingType  `json:"meeting_type"`
	DocumentType DocumentType `json:"document_type"`
	Language     Language     `json:"language"`

	CompanyName string `json:"company_name"`
	ISIN        string `json:"isin,omitempty"`
	RCS         string `json:"rcs,omitempty"`
	BIC         string `json:"bic,omitempty"`

	MeetingDate string `json:"meeting_date,omitempty"`
	MeetingTime string `json:"meeting_time,omitempty"`
	Time        string `json:"time,omitempty"`
	RecordDate  string `json:"record_date,omitempty"`
	Deadline    string `json:"deadline,omitempty"`

	Location string   `json:"location,omitempty"`
	Address  *Address `json:"address,omitempty"`
	Contact  Contact  `json:"contact"`
	URL      string   `json:"url,omitempty"`
	Quorum   string   `json:"quorum,omitempty"`

	// HoldingBalance is a whole number of shares or bonds, without separators.
	HoldingBalance string `json:"holding_balance,omitempty"`

	Resolutions []Resolution `json:"resolutions"`

	AGM        *AGMDetails        `json:"agm,omitempty"`
	EGM        *EGMDetails        `json:"egm,omitempty"`
	Bondholder *BondholderDetails `json:"bondholder,omitempty"`
}

// Coverage reports, per field name, whether extraction found a value.
func (r *Record) Coverage() map[string]bool {
	return map[string]bool{
		"company_name": r.CompanyName != "" && r.CompanyName != DefaultIssuer,
		"isin":         r.ISIN != "",
		"rcs":          r.RCS != "",
		"meeting_date": r.MeetingDate != "",
		"meeting_time": r.MeetingTime != "",
		"record_date":  r.RecordDate != "",
		"deadline":     r.Deadline != "",
		"location":     r.Location != "",
		"email":        r.Contact.Email != "",
		"phone":        r.Contact.Phone != "",
		"url":          r.URL != "",
		"quorum":       r.Quorum != "",
		"balance":      r.HoldingBalance != "",
		"bic":          r.BIC != "",
		"resolutions":  len(r.Resolutions) > 0,
	}
}
