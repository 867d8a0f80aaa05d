package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"go-sales-analytics/internal/model"
	"go-sales-analytics/pkg/utils"
)

// LoadSpec reads a YAML or JSON report spec, chosen by extension
func LoadSpec(path string) (model.ReportSpec, error) {
	var spec model.ReportSpec
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("failed to read spec: %w", err)
	}

	switch utils.GetFileType(path) {
	case "json":
		err = json.Unmarshal(data, &spec)
	case "yaml":
		err = yaml.UnmarshalStrict(data, &spec)
	default:
		return spec, fmt.Errorf("unsupported spec file type: %s", path)
	}
	if err != nil {
		return spec, fmt.Errorf("failed to parse spec %s: %w", path, err)
	}
	return spec, nil
}

// filterFlags overlays --year/--category/--region onto base, one dimension at a
// time. Dimensions without a flag keep base's value; nil means "all values" and a
// flag given an empty value selects nothing. base is not modified.
func filterFlags(flags *pflag.FlagSet, base *model.Filter, years, categories, regions []string) (*model.Filter, error) {
	f := &model.Filter{}
	if base != nil {
		*f = *base
	}
	if flags.Changed("year") {
		f.Years = make([]int, 0, len(years))
		for _, y := range years {
			n, err := strconv.Atoi(y)
			if err != nil {
				return nil, fmt.Errorf("invalid --year %q", y)
			}
			f.Years = append(f.Years, n)
		}
	}
	if flags.Changed("category") {
		f.Categories = append([]string{}, categories...)
	}
	if flags.Changed("region") {
		f.Regions = append([]string{}, regions...)
	}
	if f.IsZero() {
		return nil, nil
	}
	return f, nil
}
