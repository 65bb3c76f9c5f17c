package model

import "strings"

// Kind is the closed set of native field kinds understood by the converters.
type Kind string

const (
	KindAuto                 Kind = "auto"
	KindInteger              Kind = "integer"
	KindSmallInteger         Kind = "small-integer"
	KindPositiveInteger      Kind = "positive-integer"
	KindPositiveSmallInteger Kind = "positive-small-integer"
	KindBigInteger           Kind = "big-integer"
	KindDecimal              Kind = "decimal"
	KindFloat                Kind = "float"
	KindFile                 Kind = "file"
	KindFilePath             Kind = "file-path"
	KindImage                Kind = "image"
	KindBoolean              Kind = "boolean"
	KindChar                 Kind = "char"
	KindPhone                Kind = "phone"
	KindSlug                 Kind = "slug"
	KindString               Kind = "string"
	KindXML                  Kind = "xml"
	KindText                 Kind = "text"
	KindForeignKey           Kind = "foreign-key"
	KindTime                 Kind = "time"
	KindDateTime             Kind = "datetime"
	KindDate                 Kind = "date"
	KindEmail                Kind = "email"
	KindIPAddress            Kind = "ip-address"
	KindURL                  Kind = "url"
	KindUSState              Kind = "us-state"
	KindNullBoolean          Kind = "null-boolean"
	KindUUID                 Kind = "uuid"
	KindObjectID             Kind = "object-id"
	KindJSON                 Kind = "json"
	KindList                 Kind = "list"
)

var allKinds = []Kind{
	KindAuto, KindInteger, KindSmallInteger, KindPositiveInteger,
	KindPositiveSmallInteger, KindBigInteger, KindDecimal, KindFloat,
	KindFile, KindFilePath, KindImage, KindBoolean, KindChar, KindPhone,
	KindSlug, KindString, KindXML, KindText, KindForeignKey, KindTime,
	KindDateTime, KindDate, KindEmail, KindIPAddress, KindURL, KindUSState,
	KindNullBoolean, KindUUID, KindObjectID, KindJSON, KindList,
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	return append([]Kind(nil), allKinds...)
}

// Valid reports whether k belongs to the closed enumeration.
func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsRelation reports whether the kind references another model.
func (k Kind) IsRelation() bool {
	return k == KindForeignKey
}

// ParseKind resolves a kind from its canonical name or from one of the class
// names used by the relational and document vocabularies ("CharField",
// "IntField", "ReferenceField", ...). Matching ignores case.
func ParseKind(raw string) (Kind, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	if kind := Kind(key); kind.Valid() {
		return kind, true
	}
	kind, ok := classAliases[key]
	return kind, ok
}

var classAliases = map[string]Kind{
	// relational column classes
	"autofield":                 KindAuto,
	"bigautofield":              KindAuto,
	"integerfield":              KindInteger,
	"smallintegerfield":         KindSmallInteger,
	"positiveintegerfield":      KindPositiveInteger,
	"positivesmallintegerfield": KindPositiveSmallInteger,
	"bigintegerfield":           KindBigInteger,
	"decimalfield":              KindDecimal,
	"floatfield":                KindFloat,
	"filefield":                 KindFile,
	"filepathfield":             KindFilePath,
	"imagefield":                KindImage,
	"booleanfield":              KindBoolean,
	"charfield":                 KindChar,
	"phonenumberfield":          KindPhone,
	"slugfield":                 KindSlug,
	"stringfield":               KindString,
	"xmlfield":                  KindXML,
	"textfield":                 KindText,
	"foreignkey":                KindForeignKey,
	"timefield":                 KindTime,
	"datetimefield":             KindDateTime,
	"datefield":                 KindDate,
	"emailfield":                KindEmail,
	"ipaddressfield":            KindIPAddress,
	"genericipaddressfield":     KindIPAddress,
	"urlfield":                  KindURL,
	"usstatefield":              KindUSState,
	"nullbooleanfield":          KindNullBoolean,
	"uuidfield":                 KindUUID,
	"jsonfield":                 KindJSON,
	// document field classes
	"intfield":             KindInteger,
	"longfield":            KindBigInteger,
	"sequencefield":        KindAuto,
	"referencefield":       KindForeignKey,
	"objectidfield":        KindObjectID,
	"dictfield":            KindJSON,
	"listfield":            KindList,
	"binaryfield":          KindFile,
	"complexdatetimefield": KindDateTime,
}
