package domain

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/adbroker-backend/internal/normalization"
)

// Company is a canonical advertiser. Name is what gets stored as the category owner;
// Code is the short code used in creative asset paths.
type Company struct {
	Name    string   `yaml:"name" json:"name"`
	Code    string   `yaml:"code" json:"code"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
}

// CompanyDirectory maps accepted spellings to one canonical company.
// Lookups compare letters and digits only, so "Eli-Lilly", "eli  lilly" and
// "ELI LILLY" all resolve to the same entry. Unknown spellings are rejected.
type CompanyDirectory struct {
	byKey     map[string]Company
	companies []Company
}

var defaultCompanies = []Company{
	{Name: "genentech", Code: "genentech", Aliases: []string{"genentech inc", "genentech, inc."}},
	{Name: "eli lilly", Code: "lilly", Aliases: []string{"lilly", "eli lilly and company", "eli lilly & co"}},
	{Name: "pfizer", Code: "pfizer", Aliases: []string{"pfizer inc"}},
	{Name: "novartis", Code: "novartis", Aliases: []string{"novartis ag"}},
	{Name: "merck", Code: "merck", Aliases: []string{"merck & co", "msd"}},
	{Name: "johnson & johnson", Code: "jnj", Aliases: []string{"j&j", "jnj", "johnson and johnson"}},
	{Name: "astrazeneca", Code: "astrazeneca", Aliases: []string{"astra zeneca"}},
	{Name: "bristol myers squibb", Code: "bms", Aliases: []string{"bms", "bristol-myers squibb"}},
	{Name: "abbvie", Code: "abbvie", Aliases: []string{"abbvie inc"}},
	{Name: "novo nordisk", Code: "novo", Aliases: []string{"novo"}},
}

func NewCompanyDirectory(companies []Company) (*CompanyDirectory, error) {
	d := &CompanyDirectory{byKey: map[string]Company{}}
	for _, c := range companies {
		c.Name = normalization.Disease(c.Name)
		c.Code = strings.TrimSpace(strings.ToLower(c.Code))
		if c.Name == "" || c.Code == "" {
			return nil, fmt.Errorf("company directory: name and code are required (got %q/%q)", c.Name, c.Code)
		}
		keys := append([]string{c.Name, c.Code}, c.Aliases...)
		for _, alias := range keys {
			k := normalization.CompanyKey(alias)
			if k == "" {
				continue
			}
			if prev, ok := d.byKey[k]; ok && prev.Name != c.Name {
				return nil, fmt.Errorf("company directory: alias %q maps to both %q and %q", alias, prev.Name, c.Name)
			}
			d.byKey[k] = c
		}
		d.companies = append(d.companies, c)
	}
	sort.Slice(d.companies, func(i, j int) bool { return d.companies[i].Name < d.companies[j].Name })
	return d, nil
}

func DefaultCompanyDirectory() *CompanyDirectory {
	d, err := NewCompanyDirectory(defaultCompanies)
	if err != nil {
		panic(err)
	}
	return d
}

type companyDirectoryFile struct {
	Companies []Company `yaml:"companies"`
}

// LoadCompanyDirectory reads a YAML file of the form:
//
//	companies:
//	  - name: eli lilly
//	    code: lilly
//	    aliases: [lilly, "eli lilly and company"]
func LoadCompanyDirectory(path string) (*CompanyDirectory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read company directory: %w", err)
	}
	var f companyDirectoryFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse company directory: %w", err)
	}
	if len(f.Companies) == 0 {
		return nil, fmt.Errorf("company directory %s lists no companies", path)
	}
	return NewCompanyDirectory(f.Companies)
}

func (d *CompanyDirectory) Resolve(raw string) (Company, bool) {
	if d == nil {
		return Company{}, false
	}
	c, ok := d.byKey[normalization.CompanyKey(raw)]
	return c, ok
}

func (d *CompanyDirectory) Companies() []Company {
	if d == nil {
		return nil
	}
	out := make([]Company, len(d.companies))
	copy(out, d.companies)
	return out
}

// AssetPath derives the creative asset location, e.g. ad_images/lilly_obesity.png.
func (c Company) AssetPath(disease string) string {
	return "ad_images/" + c.Code + "_" + normalization.Slug(disease) + ".png"
}
