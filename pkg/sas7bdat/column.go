package sas7bdat

import "encoding/binary"

// ColumnType is the logical type a column decodes to.
type ColumnType uint8

const (
	TypeUnknown ColumnType = iota
	TypeString
	TypeNumber
	TypeInteger
	TypeDateTime
	TypeDate
	TypeTime
)

func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeInteger:
		return "integer"
	case TypeDateTime:
		return "datetime"
	case TypeDate:
		return "date"
	case TypeTime:
		return "time"
	default:
		return "unknown"
	}
}

// Kind is the storage class recorded in the column attributes.
type Kind uint8

const (
	KindCharacter Kind = iota
	KindNumeric
)

func (k Kind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "character"
}

// Column describes one column of the schema.
type Column struct {
	Name   string
	Label  string
	Format string
	// Index is the ordinal of the column in the file, before filtering.
	Index  int
	Type   ColumnType
	Offset int
	Length int

	kind  Kind
	order binary.ByteOrder
}

// Kind returns the storage class of the column.
func (c Column) Kind() Kind {
	return c.kind
}

var (
	dateTimeFormats = formatSet(
		"DATETIME", "DTWKDATX", "B8601DN", "B8601DT", "B8601DX", "B8601DZ",
		"B8601LX", "E8601DN", "E8601DT", "E8601DX", "E8601DZ", "E8601LX",
		"DATEAMPM", "DTDATE", "DTMONYY", "DTYEAR", "TOD", "MDYAMPM",
	)
	dateFormats = formatSet(
		"DATE", "DAY", "DDMMYY", "DOWNAME", "JULDAY", "JULIAN", "MMDDYY",
		"MMYY", "MMYYC", "MMYYD", "MMYYP", "MMYYS", "MMYYN", "MONNAME",
		"MONTH", "MONYY", "QTR", "QTRR", "NENGO", "WEEKDATE", "WEEKDATX",
		"WEEKDAY", "WEEKV", "WORDDATE", "WORDDATX", "YEAR", "YYMM", "YYMMC",
		"YYMMD", "YYMMP", "YYMMS", "YYMMN", "YYMON", "YYMMDD", "YYQ", "YYQC",
		"YYQD", "YYQP", "YYQS", "YYQN", "YYQR", "YYQRC", "YYQRD", "YYQRP",
		"YYQRS", "YYQRN", "YYMMDDP", "YYMMDDC", "E8601DA", "YYMMDDN",
		"MMDDYYC", "MMDDYYS", "MMDDYYD", "YYMMDDS", "B8601DA", "DDMMYYN",
		"YYMMDDD", "DDMMYYB", "DDMMYYP", "MMDDYYP", "YYMMDDB", "MMDDYYN",
		"DDMMYYC", "DDMMYYD", "DDMMYYS", "MINGUO",
	)
	timeFormats = formatSet("TIME")
)

func formatSet(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// columnType picks the logical type from the storage kind, the on-disk
// length and the display format.
func columnType(kind Kind, length int, format string) ColumnType {
	if kind == KindCharacter {
		return TypeString
	}
	switch length {
	case 1, 2:
		return TypeInteger
	}
	if length < 3 || length > 8 {
		return TypeUnknown
	}
	if _, ok := dateTimeFormats[format]; ok {
		return TypeDateTime
	}
	if _, ok := dateFormats[format]; ok {
		return TypeDate
	}
	if _, ok := timeFormats[format]; ok {
		return TypeTime
	}
	return TypeNumber
}
