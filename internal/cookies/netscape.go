package cookies

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/warpdl/cookiebridge/pkg/logger"
)

const httpOnlyPrefix = "#HttpOnly_"

// readNetscape parses a Netscape cookies.txt stream and returns the
// unexpired cookies for domain. Malformed lines are skipped with a
// warning that names the line number only.
func readNetscape(r io.Reader, domain string, l logger.Logger) ([]Cookie, error) {
	now := time.Now()
	var cookies []Cookie

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		httpOnly := strings.HasPrefix(line, httpOnlyPrefix)
		if httpOnly {
			line = line[len(httpOnlyPrefix):]
		} else if line[0] == '#' {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			l.Warning("cookies.txt line %d: expected 7 fields, got %d", lineNo, len(fields))
			continue
		}
		expiry, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			l.Warning("cookies.txt line %d: invalid expiry", lineNo)
			continue
		}

		c := Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    fields[6],
			HttpOnly: httpOnly,
		}
		// The second field marks cookies shared with subdomains.
		if strings.EqualFold(fields[1], "TRUE") && c.HostOnly() {
			c.Domain = "." + c.Domain
		}
		if !matchesDomain(c.Domain, domain) {
			continue
		}
		if expiry > 0 {
			c.Expiry = time.Unix(expiry, 0)
			if c.Expiry.Before(now) {
				continue
			}
		}
		cookies = append(cookies, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cookies.txt: %w", err)
	}
	return cookies, nil
}
