package advdata

// PDUType is the link layer advertising PDU type, which decides whether the
// advertiser accepts connections and scan requests.
type PDUType uint8

const (
	ConnectableUndirected    PDUType = 0x00 // ADV_IND
	ConnectableDirected      PDUType = 0x01 // ADV_DIRECT_IND
	NonConnectableUndirected PDUType = 0x02 // ADV_NONCONN_IND
	ScannableUndirected      PDUType = 0x06 // ADV_SCAN_IND
)

func (t PDUType) String() string {
	switch t {
	case ConnectableUndirected:
		return "ADV_IND"
	case ConnectableDirected:
		return "ADV_DIRECT_IND"
	case NonConnectableUndirected:
		return "ADV_NONCONN_IND"
	case ScannableUndirected:
		return "ADV_SCAN_IND"
	}
	return "unknown"
}

// Connectable reports whether a central may connect in response to this PDU.
func (t PDUType) Connectable() bool {
	return t == ConnectableUndirected || t == ConnectableDirected
}
