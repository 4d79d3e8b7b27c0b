package filecsv

import (
	"path/filepath"

	"solar-pipeline/infrastructure/logger"
)

// Template is a header-only CSV that is filled in by hand later.
type Template struct {
	Name   string
	Header []string
}

// PBSTemplates are the tables of the PBS electricity generation report.
var PBSTemplates = []Template{
	{"table_1_share_installed_capacity_by_type_and_region.csv", []string{
		"Province/Source", "Nuclear", "Hydel", "Thermal", "Bagasse", "Solar", "Wind", "Total", "%Share",
	}},
	{"table_2_electricity_generation_by_type_and_region.csv", []string{
		"Province/Source", "Nuclear", "Hydel", "Thermal", "Bagasse", "Solar", "Wind", "Total",
	}},
	{"table_4_1_installed_capacity_2006-2021.csv", []string{
		"Year (On 30th June)", "Private Sector", "Private % Change", "Public Sector",
		"Public % Change", "Total Installed Capacity", "Total % Change",
	}},
	{"table_4_2_installed_capacity_by_source_2006-2021.csv", []string{
		"Year", "Nuclear", "Nuclear % share", "Hydel", "Hydel % share", "Thermal",
		"Thermal % share", "Bagasse", "Bagasse % share", "Solar", "Solar % share",
		"Wind", "Wind % share", "Total",
	}},
	{"table_4_3_installed_capacity_by_province_and_source_2006-2021.csv", []string{
		"Plant State", "Year", "Punjab", "Sindh", "KP", "Balochistan", "AJK", "Total",
	}},
	{"table_4_4_installed_capacity_renewable_nuclear_thermal.csv", []string{
		"Year", "Nuclear", "Thermal", "Renewable", "Total", "% Change",
	}},
	{"table_4_5_electricity_generation_2006-2021.csv", []string{
		"Year", "Private", " % Change", "Public", " % Change", "Total", " % Change",
	}},
	{"table_4_6_electricity_generation_by_source.csv", []string{
		"Year", "Nuclear", "Hydel", "Thermal", "Bagasse", "Solar", "Wind", "Grand Total",
	}},
	{"table_4_7_electricity_generation_by_province_and_source.csv", []string{
		`Source\State`, "Year", "Punjab", "Sindh", "KP", "Balochistan", "AJK", "Total",
	}},
	{"table_4_8_gva_and_subsidy.csv", []string{
		"Year", "GVA (at current price)", "Subsidy", "GVA Growth rate",
	}},
	{"table_4_9_capacity_utilization_rate.csv", []string{
		"Name of Establishment", "Province/State", "Installed Capacity",
		"Generation (2019-20)", "Capacity Utilization Rate (19-20)",
		"Generation (2020-21)", "Capacity Utilization Rate (20-21)", "Change",
	}},
	{"table_5_1_installed_capacity_1947-2021.csv", []string{
		"Year", "Installed Capacity (MW)", "% Change",
	}},
	{"table_5_2_electricity_generation_1947-2021.csv", []string{
		"Year", "Electricity Generation (GWh)", "% Change",
	}},
	{"table_5_3_electricity_generation_2006-2021_by_type_of_plant.csv", []string{
		"Plant Type", "Year", "AJK", "Balochistan", "KPK", "Punjab", "Sindh", "Total",
	}},
	{"table_5_4_electricity_generation_2020-21_by_establishment.csv", []string{
		"Name of Establishment", "AJK", "Balochistan", "KPK", "Punjab", "Sindh", "Total",
	}},
}

// WriteTemplates creates every template under dir. A failed template is
// logged and reported; the rest are still written.
func (w *Writer) WriteTemplates(dir string, templates []Template) (created []string, failed map[string]error) {
	failed = make(map[string]error)
	for _, t := range templates {
		path := filepath.Join(dir, t.Name)
		if err := w.Write(path, t.Header, nil); err != nil {
			logger.GetLogger().WithField("path", path).WithField("error", err).Error("Failed to create template")
			failed[t.Name] = err
			continue
		}
		logger.GetLogger().WithField("path", path).Debug("Created template")
		created = append(created, path)
	}
	return created, failed
}
