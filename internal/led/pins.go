package led

import (
	"fmt"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// ResolvePin maps a pin descriptor to a registered GPIO pin. A numeric
// descriptor N is treated as the conventional "GPION" name; a string is
// matched against the registry, falling back to a case-insensitive scan of
// all registered pins and their aliases.
func ResolvePin(desc string) (gpio.PinIO, error) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return nil, fmt.Errorf("empty pin descriptor")
	}

	if n, err := strconv.Atoi(desc); err == nil {
		name := fmt.Sprintf("GPIO%d", n)
		if p := gpioreg.ByName(name); p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("pin %s not registered (is the GPIO host initialized?)", name)
	}

	if p := gpioreg.ByName(desc); p != nil {
		return p, nil
	}

	for _, p := range gpioreg.All() {
		if strings.EqualFold(p.Name(), desc) {
			return p, nil
		}
	}

	return nil, fmt.Errorf("unknown pin %q", desc)
}

// ResolvePinNumber resolves a descriptor to a raw BCM pin number for
// drivers that take numbers rather than pin handles. A purely numeric
// descriptor is accepted directly, without requiring a populated registry.
func ResolvePinNumber(desc string) (int, error) {
	desc = strings.TrimSpace(desc)
	if n, err := strconv.Atoi(desc); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative pin number %d", n)
		}
		return n, nil
	}

	p, err := ResolvePin(desc)
	if err != nil {
		return 0, err
	}
	if p.Number() < 0 {
		return 0, fmt.Errorf("pin %q has no usable number", desc)
	}
	return p.Number(), nil
}
