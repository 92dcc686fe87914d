package knobs

// Migration rewrites a raw configuration tree from an older schema. Apply
// mutates the map it is given and must be safe to run on already-migrated
// input.
type Migration struct {
	Version int
	Name    string
	Apply   func(raw map[string]any)
}

// Migrations are applied in order.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "move max_nights_before_split from fees.overnight to trip",
		Apply:   moveSplitThreshold,
	},
}

// CurrentVersion is the schema version produced by Migrate.
func CurrentVersion() int {
	return Migrations[len(Migrations)-1].Version
}

const versionKey = "schema_version"

// Migrate upgrades raw in place to CurrentVersion and reports which
// migrations ran.
func Migrate(raw map[string]any) []string {
	from := 0
	if v, ok := raw[versionKey]; ok {
		from = toInt(v)
	}

	var applied []string
	for _, m := range Migrations {
		if m.Version <= from {
			continue
		}
		m.Apply(raw)
		applied = append(applied, m.Name)
	}
	raw[versionKey] = CurrentVersion()
	return applied
}

func moveSplitThreshold(raw map[string]any) {
	fees, ok := raw["fees"].(map[string]any)
	if !ok {
		return
	}
	overnight, ok := fees["overnight"].(map[string]any)
	if !ok {
		return
	}
	threshold, ok := overnight["max_nights_before_split"]
	if !ok {
		return
	}
	delete(overnight, "max_nights_before_split")

	trip, ok := raw["trip"].(map[string]any)
	if !ok {
		trip = map[string]any{}
		raw["trip"] = trip
	}
	if _, exists := trip["max_nights_before_split"]; !exists {
		trip["max_nights_before_split"] = threshold
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
