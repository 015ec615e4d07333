// Package ops holds the named target functions the fanout CLI can run over a
// collection of string elements.
package ops

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vnykmshr/fanout/pkg/parallel"
)

// Op is a named target function over string elements.
type Op struct {
	Name        string
	Description string
	Usage       string
	Fn          parallel.Func[string, string]
}

var registry = map[string]Op{}

func register(op Op) {
	if _, exists := registry[op.Name]; exists {
		panic("ops: duplicate op " + op.Name)
	}
	registry[op.Name] = op
}

// Lookup returns the op registered under name.
func Lookup(name string) (Op, error) {
	op, ok := registry[name]
	if !ok {
		return Op{}, fmt.Errorf("unknown op %q (run 'fanout ops' to list available ops)", name)
	}
	return op, nil
}

// List returns all ops sorted by name.
func List() []Op {
	out := make([]Op, 0, len(registry))
	for _, op := range registry {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func init() {
	register(Op{Name: "identity", Description: "return the element unchanged", Fn: identity})
	register(Op{Name: "upper", Description: "upper-case the element", Fn: upper})
	register(Op{Name: "lower", Description: "lower-case the element", Fn: lower})
	register(Op{Name: "reverse", Description: "reverse the element rune by rune", Fn: reverse})
	register(Op{Name: "len", Description: "count the runes of the element", Fn: runeCount})
	register(Op{Name: "sha256", Description: "hex SHA-256 digest of the element", Fn: digest})
	register(Op{
		Name:        "repeat",
		Description: "repeat the element n times",
		Usage:       "--arg <n> [--set sep=<separator>]",
		Fn:          repeat,
	})
	register(Op{
		Name:        "wrap",
		Description: "surround the element with a prefix and a suffix",
		Usage:       "--set prefix=<text> --set suffix=<text>",
		Fn:          wrap,
	})
	register(Op{
		Name:        "sleep",
		Description: "wait, then return the element (simulates latency)",
		Usage:       "--set delay=<duration>",
		Fn:          sleep,
	})
	register(Op{
		Name:        "exec",
		Description: "run a command with the element as its last argument and return its trimmed stdout",
		Usage:       "--arg <command> [--arg <argument>]...",
		Fn:          command,
	})
	register(Op{
		Name:        "http-status",
		Description: "GET the element as a URL and return the response status code",
		Usage:       "[--set timeout=<duration>]",
		Fn:          httpStatus,
	})
}

func identity(_ context.Context, elem string, _ parallel.Args) (string, error) {
	return elem, nil
}

func upper(_ context.Context, elem string, _ parallel.Args) (string, error) {
	return strings.ToUpper(elem), nil
}

func lower(_ context.Context, elem string, _ parallel.Args) (string, error) {
	return strings.ToLower(elem), nil
}

func reverse(_ context.Context, elem string, _ parallel.Args) (string, error) {
	runes := []rune(elem)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes), nil
}

func runeCount(_ context.Context, elem string, _ parallel.Args) (string, error) {
	return strconv.Itoa(utf8.RuneCountInString(elem)), nil
}

func digest(_ context.Context, elem string, _ parallel.Args) (string, error) {
	sum := sha256.Sum256([]byte(elem))
	return hex.EncodeToString(sum[:]), nil
}

func repeat(_ context.Context, elem string, args parallel.Args) (string, error) {
	raw, err := parallel.ArgAt[string](args, 0)
	if err != nil {
		return "", fmt.Errorf("repeat needs a count: %w", err)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return "", fmt.Errorf("repeat count %q is not a non-negative integer", raw)
	}
	sep, _ := parallel.Lookup[string](args, "sep")

	parts := make([]string, n)
	for i := range parts {
		parts[i] = elem
	}
	return strings.Join(parts, sep), nil
}

func wrap(_ context.Context, elem string, args parallel.Args) (string, error) {
	prefix, _ := parallel.Lookup[string](args, "prefix")
	suffix, _ := parallel.Lookup[string](args, "suffix")
	return prefix + elem + suffix, nil
}

func sleep(ctx context.Context, elem string, args parallel.Args) (string, error) {
	delay, err := durationArg(args, "delay", 100*time.Millisecond)
	if err != nil {
		return "", err
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return elem, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func command(ctx context.Context, elem string, args parallel.Args) (string, error) {
	if args.Len() == 0 {
		return "", fmt.Errorf("exec needs a command: pass it with --arg")
	}

	argv := make([]string, 0, args.Len()+1)
	for i := 0; i < args.Len(); i++ {
		a, err := parallel.ArgAt[string](args, i)
		if err != nil {
			return "", err
		}
		argv = append(argv, a)
	}
	argv = append(argv, elem)

	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).Output()
	if err != nil {
		return "", fmt.Errorf("exec %s: %w", argv[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

func httpStatus(ctx context.Context, elem string, args parallel.Args) (string, error) {
	timeout, err := durationArg(args, "timeout", 10*time.Second)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, elem, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", elem, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return strconv.Itoa(resp.StatusCode), nil
}

func durationArg(args parallel.Args, name string, fallback time.Duration) (time.Duration, error) {
	raw, ok := parallel.Lookup[string](args, name)
	if !ok || raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a duration: %w", name, raw, err)
	}
	return d, nil
}
