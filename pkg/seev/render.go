package seev

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coolbeans/seevgen/pkg/extract"
)

// Namespace is the seev.001.001.12 message namespace.
const Namespace = "urn:iso:std:iso:20022:tech:xsd:seev.001.001.12"

// Schema field widths, in characters.
const (
	MaxIdentifierLength     = 35
	MaxTownNameLength       = 35
	MaxStreetNameLength     = 70
	MaxBuildingNumberLength = 16
	MaxPostCodeLength       = 16
	MaxIssuerNameLength     = 140
	MaxURLLength            = 256
	MaxTitleLength          = 250
)

// ErrInvalidRecord is returned when a record holds a value that cannot be
// rendered, such as a malformed date.
var ErrInvalidRecord = errors.New("invalid meeting record")

// Defaults are substituted for fields the record does not carry.
type Defaults struct {
	Date    string
	ISIN    string
	Issuer  string
	Town    string
	Country string
	Title   string
	Account string
}

// StandardDefaults returns the placeholder values used when none are configured.
func StandardDefaults() Defaults {
	return Defaults{
		Date:    "2024-01-01",
		ISIN:    "LU0000000000",
		Issuer:  extract.DefaultIssuer,
		Town:    "LUXEMBOURG",
		Country: "LU",
		Title:   "Resolution",
		Account: "000000000",
	}
}

// IDGenerator returns a fresh meeting identifier.
type IDGenerator func() string

// Clock returns the announcement time.
type Clock func() time.Time

// Renderer builds seev.001 documents from meeting records.
type Renderer struct {
	defaults Defaults
	newID    IDGenerator
	now      Clock
	indent   string
}

// Option is a functional option for configuring the Renderer.
type Option func(*Renderer)

// WithDefaults replaces the placeholder values. Empty fields keep the
// standard placeholder.
func WithDefaults(d Defaults) Option {
	return func(r *Renderer) {
		std := StandardDefaults()
		r.defaults = Defaults{
			Date:    firstNonEmpty(d.Date, std.Date),
			ISIN:    firstNonEmpty(d.ISIN, std.ISIN),
			Issuer:  firstNonEmpty(d.Issuer, std.Issuer),
			Town:    firstNonEmpty(d.Town, std.Town),
			Country: firstNonEmpty(d.Country, std.Country),
			Title:   firstNonEmpty(d.Title, std.Title),
			Account: firstNonEmpty(d.Account, std.Account),
		}
	}
}

// WithIDGenerator sets the meeting identifier source.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Renderer) {
		r.newID = g
	}
}

// WithIDPrefix generates random identifiers starting with prefix.
func WithIDPrefix(prefix string) Option {
	return func(r *Renderer) {
		r.newID = func() string { return NewMeetingID(prefix) }
	}
}

// WithClock sets the announcement time source.
func WithClock(c Clock) Option {
	return func(r *Renderer) {
		r.now = c
	}
}

// WithIndent sets the indentation unit. The default is one space.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// NewRenderer creates a Renderer with standard defaults, random GMET
// identifiers and the system clock.
func NewRenderer(options ...Option) *Renderer {
	r := &Renderer{
		defaults: StandardDefaults(),
		newID:    func() string { return NewMeetingID("GMET") },
		now:      time.Now,
		indent:   " ",
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// NewMeetingID returns prefix followed by random upper-case hex, at most
// MaxIdentifierLength characters long.
func NewMeetingID(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return truncate(prefix+suffix[:16], MaxIdentifierLength)
}

// meetingTypeCodes maps meeting types to the schema's meeting type codes.
var meetingTypeCodes = map[extract.MeetingType]string{
	extract.MeetingTypeAGM:        "GMET",
	extract.MeetingTypeEGM:        "XMET",
	extract.MeetingTypeBondholder: "BMET",
}

var (
	isoDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(:\d{2})?$`)
	clockTime   = regexp.MustCompile(`^\d{2}:\d{2}$`)
	isinShape   = regexp.MustCompile(`^[A-Z0-9]{12}$`)
	bicShape    = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
	quantity    = regexp.MustCompile(`^\d{1,18}$`)
)

// Validate reports values in rec that cannot be rendered. Absent values are
// always acceptable.
func Validate(rec *extract.Record) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if rec.ISIN != "" && !isinShape.MatchString(rec.ISIN) {
		return fmt.Errorf("%w: isin %q is not 12 upper-case alphanumerics", ErrInvalidRecord, rec.ISIN)
	}
	for field, value := range map[string]string{"meeting_date": rec.MeetingDate, "record_date": rec.RecordDate} {
		if value == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", value); err != nil || !isoDate.MatchString(value) {
			return fmt.Errorf("%w: %s %q is not YYYY-MM-DD", ErrInvalidRecord, field, value)
		}
	}
	if rec.BIC != "" && !bicShape.MatchString(rec.BIC) {
		return fmt.Errorf("%w: bic %q is not 8 or 11 characters", ErrInvalidRecord, rec.BIC)
	}
	if rec.HoldingBalance != "" && !quantity.MatchString(rec.HoldingBalance) {
		return fmt.Errorf("%w: holding balance %q is not a whole number", ErrInvalidRecord, rec.HoldingBalance)
	}
	if rec.Deadline != "" && !isoDateTime.MatchString(rec.Deadline) {
		return fmt.Errorf("%w: deadline %q is not YYYY-MM-DDTHH:MM", ErrInvalidRecord, rec.Deadline)
	}
	for field, value := range map[string]string{"meeting_time": rec.MeetingTime, "time": rec.Time} {
		if value != "" && !clockTime.MatchString(value) {
			return fmt.Errorf("%w: %s %q is not HH:MM", ErrInvalidRecord, field, value)
		}
	}
	return nil
}

// Render builds the notification for rec. The record's meeting type selects
// the meeting type code; it is never re-derived from text.
func (r *Renderer) Render(rec *extract.Record) ([]byte, error) {
	if err := Validate(rec); err != nil {
		return nil, err
	}

	id := r.newID()
	if id == "" {
		return nil, fmt.Errorf("rendering: empty meeting identifier")
	}
	id = truncate(id, MaxIdentifierLength)

	root := newElement("Document").attr("xmlns", Namespace)
	root.add(newElement("MtgNtfctn").add(
		r.generalInformation(),
		r.meeting(rec, id),
		r.meetingDetails(rec),
		r.issuer(rec),
		r.issuerAgent(rec),
		r.security(rec),
	).add(r.resolutions(rec)...))

	var builder strings.Builder
	builder.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	root.write(&builder, r.indent, 0)
	return []byte(builder.String()), nil
}

func (r *Renderer) generalInformation() *element {
	return newElement("NtfctnGnlInf",
		textElement("NtfctnTp", "NEWM"),
		newElement("NtfctnSts",
			textElement("EvtCmpltnsSts", "COMP"),
			textElement("EvtConfSts", "CONF"),
		),
	)
}

func (r *Renderer) meeting(rec *extract.Record, id string) *element {
	code, ok := meetingTypeCodes[rec.MeetingType]
	if !ok {
		code = meetingTypeCodes[extract.MeetingTypeAGM]
	}

	mtg := newElement("Mtg",
		textElement("MtgId", id),
		textElement("IssrMtgId", id),
		textElement("Tp", code),
		newElement("Clssfctn", textElement("Cd", "ISSU")),
		newElement("AnncmntDt", textElement("DtTm", r.now().UTC().Format("2006-01-02T15:04:05Z"))),
		newElement("Prtcptn",
			newElement("PrtcptnMtd", textElement("Cd", "PHYS")),
			newElement("IssrDdlnForVtng",
				newElement("DtOrDtTm", textElement("DtTm", r.deadline(rec))),
			),
		),
	)
	if rec.URL != "" {
		mtg.add(textElement("AddtlDcmnttnURLAdr", truncate(rec.URL, MaxURLLength)))
	}
	mtg.add(newElement("EntitlmntFxgDt",
		newElement("Dt", textElement("Dt", firstNonEmpty(rec.RecordDate, r.defaults.Date))),
		textElement("DtMd", "EODY"),
	))
	return mtg
}

func (r *Renderer) meetingDetails(rec *extract.Record) *element {
	adr := newElement("Adr")
	town := r.defaults.Town
	if a := rec.Address; a != nil {
		if a.Street != "" {
			adr.add(textElement("StrtNm", truncate(a.Street, MaxStreetNameLength)))
		}
		if a.BuildingNumber != "" {
			adr.add(textElement("BldgNb", truncate(a.BuildingNumber, MaxBuildingNumberLength)))
		}
		if a.PostCode != "" {
			adr.add(textElement("PstCd", truncate(a.PostCode, MaxPostCodeLength)))
		}
		town = firstNonEmpty(a.Town, town)
	}
	adr.add(
		textElement("TwnNm", truncate(town, MaxTownNameLength)),
		textElement("Ctry", r.defaults.Country),
	)

	return newElement("MtgDtls",
		newElement("DtAndTm",
			newElement("DtOrDtTm", textElement("DtTm", r.meetingDateTime(rec))),
		),
		newElement("Lctn", adr),
	)
}

func (r *Renderer) issuer(rec *extract.Record) *element {
	name := strings.TrimSpace(rec.CompanyName)
	if name == "" {
		name = r.defaults.Issuer
	}
	return newElement("Issr",
		newElement("Id",
			newElement("NmAndAdr", textElement("Nm", truncate(name, MaxIssuerNameLength))),
		),
	)
}

// issuerAgent is present only when the notice names the agent's BIC.
func (r *Renderer) issuerAgent(rec *extract.Record) *element {
	if rec.BIC == "" {
		return nil
	}
	return newElement("IssrAgt",
		newElement("Id", textElement("AnyBIC", rec.BIC)),
		textElement("Role", "PRIN"),
	)
}

func (r *Renderer) security(rec *extract.Record) *element {
	scty := newElement("Scty",
		newElement("FinInstrmId", textElement("ISIN", firstNonEmpty(rec.ISIN, r.defaults.ISIN))),
	)
	if rec.HoldingBalance == "" {
		return scty
	}
	return scty.add(newElement("Pos",
		textElement("AcctId", truncate(r.defaults.Account, MaxIdentifierLength)),
		newElement("HldgBal",
			newElement("Bal",
				textElement("ShrtLngPos", "LONG"),
				newElement("Qty", textElement("Unit", rec.HoldingBalance)),
			),
			textElement("BalTp", "ELIG"),
		),
	))
}

func (r *Renderer) resolutions(rec *extract.Record) []*element {
	lang := strings.ToLower(string(rec.Language))
	if lang == "" {
		lang = strings.ToLower(string(extract.LanguageEN))
	}

	elements := make([]*element, 0, len(rec.Resolutions))
	for _, res := range rec.Resolutions {
		title := strings.TrimSpace(res.Title)
		if title == "" {
			title = r.defaults.Title
		}
		elements = append(elements, newElement("Rsltn",
			textElement("IssrLabl", truncate(strconv.Itoa(res.Number), MaxIdentifierLength)),
			newElement("Desc",
				textElement("Lang", lang),
				textElement("Titl", truncate(title, MaxTitleLength)),
			),
			textElement("ForInfOnly", strconv.FormatBool(res.InfoOnly)),
			textElement("Sts", "ACTV"),
		))
	}
	return elements
}

// meetingDateTime combines the meeting date with the meeting time, falling
// back to the first clock time in the notice and then to midnight.
func (r *Renderer) meetingDateTime(rec *extract.Record) string {
	date := firstNonEmpty(rec.MeetingDate, r.defaults.Date)
	clock := firstNonEmpty(rec.MeetingTime, rec.Time, "00:00")
	if rec.MeetingDate == "" {
		clock = "00:00"
	}
	return formatDateTime(date + "T" + clock)
}

// deadline falls back to the meeting date-time, then to the placeholder date.
func (r *Renderer) deadline(rec *extract.Record) string {
	if rec.Deadline != "" {
		return formatDateTime(rec.Deadline)
	}
	return r.meetingDateTime(rec)
}

// formatDateTime completes YYYY-MM-DD or YYYY-MM-DDTHH:MM[:SS] to
// YYYY-MM-DDTHH:MM:SSZ.
func formatDateTime(value string) string {
	switch len(value) {
	case len("2006-01-02"):
		return value + "T00:00:00Z"
	case len("2006-01-02T15:04"):
		return value + ":00Z"
	default:
		return value + "Z"
	}
}

func truncate(s string, n int) string {
	return extract.Truncate(s, n)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
