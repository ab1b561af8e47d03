package models

// Reply messages carried in the envelope body.
const (
	MsgInserted         = "INSERTED"
	MsgFoundDocument    = "FOUND_DOCUMENT"
	MsgFetched          = "FETCHED"
	MsgUpdated          = "UPDATED"
	MsgDeleted          = "DELETED"
	MsgNotFoundDocument = "NOT_FOUND_DOCUMENT"
	MsgWrongAPIKey      = "WRONG_API_KEY"
	MsgEventExpired     = "EVENT_EXPIRED"
)

// Response is the uniform reply shape of every endpoint. Status repeats
// the HTTP status code for clients that only read the body.
type Response struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
}

// Nill marks a reply that carries no payload. It serializes to an empty
// JSON array rather than null so the data field is always present.
type Nill struct{}

func (Nill) MarshalJSON() ([]byte, error) {
	return []byte("[]"), nil
}

// InsertedID is the payload of a successful insert, shaped like the
// extended-JSON object id the service has always returned.
type InsertedID struct {
	OID string `json:"$oid"`
}

func NewResponse(data interface{}, message string, status int) Response {
	return Response{
		Data:    data,
		Message: message,
		Status:  status,
	}
}

func EmptyResponse(message string, status int) Response {
	return Response{
		Data:    Nill{},
		Message: message,
		Status:  status,
	}
}
