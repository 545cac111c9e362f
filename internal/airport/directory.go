// Package airport загружает справочник аэропортов из YAML файла.
package airport

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

type entry struct {
	IATACode    string `yaml:"iata_code"`
	AirportName string `yaml:"airport_name"`
	City        string `yaml:"city"`
	CountryName string `yaml:"country_name"`
	TagList     string `yaml:"tag_list"`
}

type file struct {
	Airports []entry `yaml:"airports"`
}

// Справочник в памяти. После загрузки только читается
type Directory struct {
	byCode map[string]model.Airport
}

func Load(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open airports file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse читает справочник. Если tag_list не задан, собираем его из кода, названия, страны и города
func Parse(r io.Reader) (*Directory, error) {
	var data file
	if err := yaml.NewDecoder(r).Decode(&data); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode airports: %w", err)
	}

	d := &Directory{byCode: make(map[string]model.Airport, len(data.Airports))}
	for i, e := range data.Airports {
		code := strings.ToUpper(strings.TrimSpace(e.IATACode))
		if len(code) != 3 {
			return nil, fmt.Errorf("airport #%d: invalid iata code %q", i, e.IATACode)
		}
		if _, ok := d.byCode[code]; ok {
			return nil, fmt.Errorf("airport #%d: duplicate iata code %s", i, code)
		}

		a := model.Airport{
			IATACode:    code,
			AirportName: strings.TrimSpace(e.AirportName),
			City:        strings.TrimSpace(e.City),
			CountryName: strings.TrimSpace(e.CountryName),
			TagList:     e.TagList,
		}
		if strings.TrimSpace(a.TagList) == "" {
			a.TagList = a.DefaultTagList()
		}

		d.byCode[code] = a
	}

	return d, nil
}

func (d *Directory) AirportByCode(_ context.Context, code string) (*model.Airport, error) {
	a, ok := d.byCode[code]
	if !ok {
		return nil, nil
	}

	return &a, nil
}

func (d *Directory) All() []model.Airport {
	airports := make([]model.Airport, 0, len(d.byCode))
	for _, a := range d.byCode {
		airports = append(airports, a)
	}

	return airports
}

func (d *Directory) Len() int {
	return len(d.byCode)
}
