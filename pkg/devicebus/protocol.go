package devicebus

import (
	"bytes"
	"strconv"
	"strings"
)

// Префиксы терминальных ответов устройства.
const (
	PrefixEnrollOK   = "!ENROLL_OK,"
	PrefixDuplicate  = "!DUPLICATE,"
	PrefixLowQuality = "!LOWTQ,"
	PrefixSearchOK   = "!SEARCH_OK,"
)

type ResponseKind int

const (
	KindNone ResponseKind = iota
	KindEnrollOK
	KindDuplicate
	KindLowQuality
	KindSearchOK
)

func (k ResponseKind) String() string {
	switch k {
	case KindEnrollOK:
		return "ENROLL_OK"
	case KindDuplicate:
		return "DUPLICATE_TEMPLATE"
	case KindLowQuality:
		return "LOW_QUALITY"
	case KindSearchOK:
		return "SEARCH_OK"
	}
	return "INDETERMINATE"
}

// Command: строка команды и необязательная двоичная нагрузка, уходят одним сообщением.
type Command struct {
	Line    string
	Payload []byte
}

// Encode пишет заголовок, "\r\n", затем нагрузку.
func (c Command) Encode() []byte {
	buf := make([]byte, 0, len(c.Line)+2+len(c.Payload))
	buf = append(buf, c.Line...)
	buf = append(buf, '\r', '\n')
	return append(buf, c.Payload...)
}

func FaceEnroll(last, first, patronymic string, jpeg []byte) Command {
	return Command{Line: "!FACE_ENROLL,0," + names(last, first, patronymic), Payload: jpeg}
}

func CardEnroll(last, first, patronymic, cardID string) Command {
	return Command{Line: "!IDENROLL,0," + names(last, first, patronymic) + "," + field(cardID)}
}

func FingerEnroll(last, first, patronymic string, template []byte) Command {
	return Command{Line: "!ENROLL,0," + names(last, first, patronymic), Payload: template}
}

func FaceSearch(probe []byte) Command {
	return Command{Line: "!FACE_SEARCH,0,", Payload: probe}
}

func names(last, first, patronymic string) string {
	return field(last) + "," + field(first) + "," + field(patronymic)
}

// запятая и перевод строки ломают разбор заголовка на устройстве
func field(s string) string {
	return strings.TrimSpace(strings.NewReplacer(",", " ", "\r", " ", "\n", " ").Replace(s))
}

// Response: разобранный ответ устройства.
type Response struct {
	Kind       ResponseKind
	Raw        string
	LastName   string
	FirstName  string
	Patronymic string
	EmployeeID int64
}

// ParseResponse разбирает сообщение из входного топика.
// Второе значение false, если ответ не терминальный.
func ParseResponse(msg []byte) (Response, bool) {
	line := msg
	if i := bytes.Index(msg, []byte("\r\n")); i >= 0 {
		line = msg[:i]
	}
	raw := strings.TrimSpace(string(line))

	var kind ResponseKind
	var prefix string
	switch {
	case strings.HasPrefix(raw, PrefixEnrollOK):
		kind, prefix = KindEnrollOK, PrefixEnrollOK
	case strings.HasPrefix(raw, PrefixDuplicate):
		kind, prefix = KindDuplicate, PrefixDuplicate
	case strings.HasPrefix(raw, PrefixLowQuality):
		kind, prefix = KindLowQuality, PrefixLowQuality
	case strings.HasPrefix(raw, PrefixSearchOK):
		kind, prefix = KindSearchOK, PrefixSearchOK
	default:
		return Response{Raw: raw}, false
	}

	resp := Response{Kind: kind, Raw: raw}
	if kind == KindLowQuality {
		return resp, true
	}

	// хвост: [код,]фамилия,имя,отчество,id
	parts := strings.Split(strings.TrimPrefix(raw, prefix), ",")
	if n := len(parts); n >= 4 {
		if id, err := strconv.ParseInt(strings.TrimSpace(parts[n-1]), 10, 64); err == nil {
			resp.EmployeeID = id
		}
		resp.LastName = strings.TrimSpace(parts[n-4])
		resp.FirstName = strings.TrimSpace(parts[n-3])
		resp.Patronymic = strings.TrimSpace(parts[n-2])
	}
	return resp, true
}
