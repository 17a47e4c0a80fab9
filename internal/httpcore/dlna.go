package httpcore

import (
	"fmt"
	"strings"

	"gomediaserver/internal/probe"
)

// DLNA.ORG_FLAGS bit values, per the DLNA HTTP transfer-profile
// specification. Only the bits this server ever sets are named; every
// other bit of the field is reserved and always zero.
const (
	flagStreamingTransfer   uint32 = 1 << 24 // TM_S
	flagInteractiveTransfer uint32 = 1 << 23 // TM_I
	flagBackgroundTransfer  uint32 = 1 << 22 // TM_B
	flagConnectionStall     uint32 = 1 << 21 // HTTP_STALLING
	flagDLNAv15             uint32 = 1 << 20 // DLNA_V1_5
)

// contentFeatures builds the contentFeatures.dlna.org header value for a
// Detail, per spec §4.6.1 step 5: DLNA.ORG_PN (only when a profile was
// assigned at probe time), DLNA.ORG_OP=01 (byte-range seek supported),
// DLNA.ORG_CI=0 (not a transcode), DLNA.ORG_FLAGS assembled from
// DLNA_V1_5 | HTTP_STALLING | TM_B plus TM_S for audio/video or TM_I for
// images (stills never have a meaningful "streaming" transfer mode).
func contentFeatures(dlnaProfile string, kind probe.MediaKind, mode transferMode) string {
	flags := flagConnectionStall | flagDLNAv15 | flagBackgroundTransfer
	if kind == probe.KindImage {
		flags |= flagInteractiveTransfer
	} else {
		flags |= flagStreamingTransfer
	}

	var pn string
	if dlnaProfile != "" {
		pn = "DLNA.ORG_PN=" + dlnaProfile + ";"
	}
	return fmt.Sprintf("%sDLNA.ORG_OP=01;DLNA.ORG_CI=0;DLNA.ORG_FLAGS=%08X%s", pn, flags, strings.Repeat("0", 24))
}
