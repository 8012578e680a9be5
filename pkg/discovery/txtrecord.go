package discovery

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeServiceTXT creates TXT records for a log server.
func EncodeServiceTXT(info *ServiceInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyVersion] = strconv.Itoa(ProtocolVersion)

	if info.RecordingID != "" {
		txt[TXTKeyRecordingID] = info.RecordingID
	}
	if info.App != "" {
		txt[TXTKeyApp] = info.App
	}

	return txt
}

// DecodeServiceTXT parses TXT records of a log server into s.
func DecodeServiceTXT(txt TXTRecordMap, s *Service) error {
	verStr, ok := txt[TXTKeyVersion]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	ver, err := strconv.Atoi(verStr)
	if err != nil || ver < 1 {
		return fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeyVersion, verStr)
	}

	s.Version = ver
	s.RecordingID = txt[TXTKeyRecordingID]
	s.App = txt[TXTKeyApp]
	return nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, _ := strings.Cut(s, "=")
		if k != "" {
			txt[k] = v
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return ErrInstanceNameEmpty
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
