package main

import (
	"fmt"
	"strings"
)

// parseLabels turns "k=v,k2=v2" into a label map. An empty string yields nil;
// a malformed pair is a construction error.
func parseLabels(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	labels := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("malformed label pair %q, want k=v", pair)
		}
		labels[k] = strings.TrimSpace(v)
	}
	return labels, nil
}
