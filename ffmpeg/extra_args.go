package ffmpeg

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// ParseExtraArgs securely splits operator-supplied extra ffmpeg
// arguments into a slice. It never goes through a shell, and rejects
// shell metacharacters outright so a misconfigured value cannot smuggle
// anything past exec.
func ParseExtraArgs(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	args, err := shlex.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid argument syntax: %w", err)
	}
	for _, arg := range args {
		if strings.ContainsAny(arg, "|&;`$()<>") {
			return nil, fmt.Errorf("disallowed character found in argument: %s", arg)
		}
	}
	return args, nil
}
