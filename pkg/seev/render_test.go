package seev

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/seevgen/pkg/extract"
)

var fixedTime = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

func newTestRenderer(options ...Option) *Renderer {
	base := []Option{
		WithIDGenerator(func() string { return "GMETTEST0001" }),
		WithClock(func() time.Time { return fixedTime }),
	}
	return NewRenderer(append(base, options...)...)
}

// document mirrors the parts of the message the tests inspect.
type document struct {
	XMLName xml.Name `xml:"Document"`
	Ntfctn  struct {
		GnlInf struct {
			Tp string `xml:"NtfctnTp"`
		} `xml:"NtfctnGnlInf"`
		Mtg struct {
			MtgID     string `xml:"MtgId"`
			IssrMtgID string `xml:"IssrMtgId"`
			Tp        string `xml:"Tp"`
			Anncmnt   string `xml:"AnncmntDt>DtTm"`
			Ddln      string `xml:"Prtcptn>IssrDdlnForVtng>DtOrDtTm>DtTm"`
			URL       string `xml:"AddtlDcmnttnURLAdr"`
			Entitled  string `xml:"EntitlmntFxgDt>Dt>Dt"`
		} `xml:"Mtg"`
		Dtls struct {
			DtTm   string `xml:"DtAndTm>DtOrDtTm>DtTm"`
			Street string `xml:"Lctn>Adr>StrtNm"`
			Bldg   string `xml:"Lctn>Adr>BldgNb"`
			PstCd  string `xml:"Lctn>Adr>PstCd"`
			Town   string `xml:"Lctn>Adr>TwnNm"`
			Ctry   string `xml:"Lctn>Adr>Ctry"`
		} `xml:"MtgDtls"`
		Issuer    string `xml:"Issr>Id>NmAndAdr>Nm"`
		AgentBIC  string `xml:"IssrAgt>Id>AnyBIC"`
		AgentRole string `xml:"IssrAgt>Role"`
		ISIN      string `xml:"Scty>FinInstrmId>ISIN"`
		AcctID    string `xml:"Scty>Pos>AcctId"`
		Position  string `xml:"Scty>Pos>HldgBal>Bal>ShrtLngPos"`
		Units     string `xml:"Scty>Pos>HldgBal>Bal>Qty>Unit"`
		BalTp     string `xml:"Scty>Pos>HldgBal>BalTp"`
		Rsltn     []struct {
			Labl    string `xml:"IssrLabl"`
			Lang    string `xml:"Desc>Lang"`
			Titl    string `xml:"Desc>Titl"`
			InfOnly bool   `xml:"ForInfOnly"`
			Sts     string `xml:"Sts"`
		} `xml:"Rsltn"`
	} `xml:"MtgNtfctn"`
}

func parse(t *testing.T, out []byte) document {
	t.Helper()
	var doc document
	require.NoError(t, xml.Unmarshal(out, &doc))
	return doc
}

func sampleRecord() *extract.Record {
	return &extract.Record{
		MeetingType: extract.MeetingTypeAGM,
		Language:    extract.LanguageEN,
		CompanyName: "ACME HOLDINGS S.A.",
		ISIN:        "LU1234567890",
		MeetingDate: "2025-03-05",
		MeetingTime: "14:30",
		RecordDate:  "2025-02-19",
		Deadline:    "2025-02-28T17:00",
		Address: &extract.Address{
			BuildingNumber: "15",
			Street:         "Avenue John F. Kennedy",
			PostCode:       "L-1855",
			Town:           "LUXEMBOURG",
		},
		URL: "https://www.acme.lu/agm",
		Resolutions: []extract.Resolution{
			{Number: 1, Title: "Presentation of the management report", InfoOnly: true},
			{Number: 2, Title: "Approval of the annual accounts 2024"},
		},
	}
}

func TestRender_FullRecord(t *testing.T) {
	out, err := newTestRenderer().Render(sampleRecord())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, string(out), `<Document xmlns="`+Namespace+`">`)

	doc := parse(t, out)
	n := doc.Ntfctn
	assert.Equal(t, "NEWM", n.GnlInf.Tp)
	assert.Equal(t, "GMETTEST0001", n.Mtg.MtgID)
	assert.Equal(t, "GMETTEST0001", n.Mtg.IssrMtgID)
	assert.Equal(t, "GMET", n.Mtg.Tp)
	assert.Equal(t, "2025-01-15T09:30:00Z", n.Mtg.Anncmnt)
	assert.Equal(t, "2025-02-28T17:00:00Z", n.Mtg.Ddln)
	assert.Equal(t, "https://www.acme.lu/agm", n.Mtg.URL)
	assert.Equal(t, "2025-02-19", n.Mtg.Entitled)
	assert.Equal(t, "2025-03-05T14:30:00Z", n.Dtls.DtTm)
	assert.Equal(t, "Avenue John F. Kennedy", n.Dtls.Street)
	assert.Equal(t, "15", n.Dtls.Bldg)
	assert.Equal(t, "L-1855", n.Dtls.PstCd)
	assert.Equal(t, "LUXEMBOURG", n.Dtls.Town)
	assert.Equal(t, "LU", n.Dtls.Ctry)
	assert.Equal(t, "ACME HOLDINGS S.A.", n.Issuer)
	assert.Equal(t, "LU1234567890", n.ISIN)

	require.Len(t, n.Rsltn, 2)
	assert.Equal(t, "1", n.Rsltn[0].Labl)
	assert.Equal(t, "en", n.Rsltn[0].Lang)
	assert.True(t, n.Rsltn[0].InfOnly)
	assert.False(t, n.Rsltn[1].InfOnly)
	assert.Equal(t, "ACTV", n.Rsltn[1].Sts)
	assert.Equal(t, "Approval of the annual accounts 2024", n.Rsltn[1].Titl)
}

func TestRender_EmptyRecordUsesDefaults(t *testing.T) {
	out, err := newTestRenderer().Render(&extract.Record{})
	require.NoError(t, err)

	n := parse(t, out).Ntfctn
	assert.Equal(t, "ISSUER", n.Issuer)
	assert.Equal(t, "LU0000000000", n.ISIN)
	assert.Equal(t, "2024-01-01", n.Mtg.Entitled)
	assert.Equal(t, "2024-01-01T00:00:00Z", n.Dtls.DtTm)
	assert.Equal(t, "2024-01-01T00:00:00Z", n.Mtg.Ddln)
	assert.Equal(t, "LUXEMBOURG", n.Dtls.Town)
	assert.Empty(t, n.Dtls.Street)
	assert.Empty(t, n.Mtg.URL)
	assert.Empty(t, n.Rsltn)
	assert.NotContains(t, string(out), "AddtlDcmnttnURLAdr")
	assert.NotContains(t, string(out), "<Rsltn>")
	assert.NotContains(t, string(out), "<IssrAgt>")
	assert.NotContains(t, string(out), "<Pos>")
}

func TestRender_HoldingBalanceAndAgent(t *testing.T) {
	rec := sampleRecord()
	rec.HoldingBalance = "1500000"
	rec.BIC = "BILLLULLXXX"

	out, err := newTestRenderer().Render(rec)
	require.NoError(t, err)

	n := parse(t, out).Ntfctn
	assert.Equal(t, "BILLLULLXXX", n.AgentBIC)
	assert.Equal(t, "PRIN", n.AgentRole)
	assert.Equal(t, "000000000", n.AcctID)
	assert.Equal(t, "LONG", n.Position)
	assert.Equal(t, "1500000", n.Units)
	assert.Equal(t, "ELIG", n.BalTp)

	xmlText := string(out)
	order := []string{"</Issr>", "<IssrAgt>", "<Scty>", "</FinInstrmId>", "<Pos>", "</Scty>", "<Rsltn>"}
	last := -1
	for _, tag := range order {
		i := strings.Index(xmlText, tag)
		require.NotEqual(t, -1, i, tag)
		assert.Greater(t, i, last, "%s out of order", tag)
		last = i
	}
}

func TestRender_MeetingTypeCodes(t *testing.T) {
	tests := []struct {
		meetingType extract.MeetingType
		want        string
	}{
		{extract.MeetingTypeAGM, "GMET"},
		{extract.MeetingTypeEGM, "XMET"},
		{extract.MeetingTypeBondholder, "BMET"},
		{"", "GMET"},
	}

	for _, tt := range tests {
		t.Run(string(tt.meetingType), func(t *testing.T) {
			out, err := newTestRenderer().Render(&extract.Record{MeetingType: tt.meetingType})
			require.NoError(t, err)
			assert.Equal(t, tt.want, parse(t, out).Ntfctn.Mtg.Tp)
		})
	}
}

func TestRender_FrenchResolutionLanguage(t *testing.T) {
	rec := &extract.Record{
		Language:    extract.LanguageFR,
		Resolutions: []extract.Resolution{{Number: 1, Title: "Modification des statuts"}},
	}
	out, err := newTestRenderer().Render(rec)
	require.NoError(t, err)
	assert.Equal(t, "fr", parse(t, out).Ntfctn.Rsltn[0].Lang)
}

func TestRender_TruncatesTitles(t *testing.T) {
	rec := &extract.Record{
		Resolutions: []extract.Resolution{{Number: 1, Title: strings.Repeat("é", 300)}},
	}
	out, err := newTestRenderer().Render(rec)
	require.NoError(t, err)

	titl := parse(t, out).Ntfctn.Rsltn[0].Titl
	assert.Equal(t, MaxTitleLength, len([]rune(titl)))
	assert.False(t, strings.HasSuffix(titl, "..."))
}

func TestRender_TruncatesIssuerName(t *testing.T) {
	rec := &extract.Record{CompanyName: strings.Repeat("A", 200)}
	out, err := newTestRenderer().Render(rec)
	require.NoError(t, err)
	assert.Len(t, parse(t, out).Ntfctn.Issuer, MaxIssuerNameLength)
}

func TestRender_EscapesText(t *testing.T) {
	rec := &extract.Record{
		CompanyName: `SMITH & SONS <"HOLDINGS">`,
		Resolutions: []extract.Resolution{{Number: 1, Title: "Q&A on the <new> \"plan\""}},
	}
	out, err := newTestRenderer().Render(rec)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "SMITH &amp; SONS &lt;&quot;HOLDINGS&quot;&gt;")
	assert.Contains(t, s, "Q&amp;A on the &lt;new&gt; &quot;plan&quot;")

	n := parse(t, out).Ntfctn
	assert.Equal(t, `SMITH & SONS <"HOLDINGS">`, n.Issuer)
	assert.Equal(t, `Q&A on the <new> "plan"`, n.Rsltn[0].Titl)
}

func TestRender_Deterministic(t *testing.T) {
	r := newTestRenderer()
	first, err := r.Render(sampleRecord())
	require.NoError(t, err)
	second, err := r.Render(sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRender_MeetingWithoutTimeUsesNoticeTime(t *testing.T) {
	rec := &extract.Record{MeetingDate: "2025-05-12", Time: "10:00"}
	out, err := newTestRenderer().Render(rec)
	require.NoError(t, err)

	n := parse(t, out).Ntfctn
	assert.Equal(t, "2025-05-12T10:00:00Z", n.Dtls.DtTm)
	assert.Equal(t, "2025-05-12T10:00:00Z", n.Mtg.Ddln)
}

func TestRender_InvalidRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  *extract.Record
	}{
		{"nil", nil},
		{"bad isin", &extract.Record{ISIN: "lu12"}},
		{"impossible date", &extract.Record{MeetingDate: "2025-02-31"}},
		{"bad record date", &extract.Record{RecordDate: "19/02/2025"}},
		{"bad deadline", &extract.Record{Deadline: "tomorrow"}},
		{"bad time", &extract.Record{MeetingTime: "2pm"}},
		{"bad bic", &extract.Record{BIC: "BIL"}},
		{"bad balance", &extract.Record{HoldingBalance: "1,500"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestRenderer().Render(tt.rec)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestRender_WithDefaults(t *testing.T) {
	r := newTestRenderer(WithDefaults(Defaults{Town: "ESCH-SUR-ALZETTE", Issuer: "UNKNOWN"}))
	out, err := r.Render(&extract.Record{})
	require.NoError(t, err)

	n := parse(t, out).Ntfctn
	assert.Equal(t, "ESCH-SUR-ALZETTE", n.Dtls.Town)
	assert.Equal(t, "UNKNOWN", n.Issuer)
	assert.Equal(t, "LU0000000000", n.ISIN)
}

func TestRender_Indent(t *testing.T) {
	out, err := newTestRenderer(WithIndent("\t")).Render(&extract.Record{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n\t<MtgNtfctn>\n")
}

func TestNewMeetingID(t *testing.T) {
	id := NewMeetingID("GMET")
	assert.True(t, strings.HasPrefix(id, "GMET"))
	assert.LessOrEqual(t, len(id), MaxIdentifierLength)
	assert.NotEqual(t, id, NewMeetingID("GMET"))

	long := NewMeetingID(strings.Repeat("X", 40))
	assert.Len(t, long, MaxIdentifierLength)
}

func TestEscapeXML_DropsControlCharacters(t *testing.T) {
	assert.Equal(t, "ab", escapeXML("a\x00b"))
	assert.Equal(t, "a\tb", escapeXML("a\tb"))
	assert.Equal(t, "&apos;", escapeXML("'"))
}
