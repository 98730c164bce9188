package wire

import (
	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Times are written as RFC 3339
// strings with nanoseconds so they survive a round trip intact.
var encMode cbor.EncMode

// decMode is the CBOR decoder. Unknown map keys are ignored so a reader
// with an older plan still decodes what it knows.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano

	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("wire: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// a value level costs one map or array, plus one map per base
		// type in its chain
		MaxNestedLevels: 4 * maxDepth,
	}.DecMode()
	if err != nil {
		panic("wire: CBOR decoder initialization failed: " + err.Error())
	}
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for data.
// Handy when checking which tags a payload carries.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

const cborNull = 0xf6

func isNull(raw cbor.RawMessage) bool {
	return len(raw) == 1 && raw[0] == cborNull
}

// messageFields is a struct message with its values still encoded.
type messageFields = map[uint64]cbor.RawMessage

func decodeMessage(raw cbor.RawMessage) (messageFields, error) {
	var m messageFields
	if err := decMode.Unmarshal(raw, &m); err != nil {
		return nil, err
	}

	return m, nil
}
