package service

import "path/filepath"

// Layout fixes the output directory tree under one root: compressed and
// raw artifacts live in sibling folders per sitemap kind, reports in their
// own folder.
type Layout struct {
	Root string
}

func (l Layout) LocaleGz() string {
	return filepath.Join(l.Root, "xml_sitemaps")
}

func (l Layout) LocaleRaw() string {
	return filepath.Join(l.Root, "raw_xml_sitemaps")
}

func (l Layout) MasterGz() string {
	return filepath.Join(l.Root, "master_xml_sitemaps")
}

func (l Layout) MasterRaw() string {
	return filepath.Join(l.Root, "master_raw_xml_sitemaps")
}

func (l Layout) PaginatedGz() string {
	return filepath.Join(l.Root, "paginated_xml_sitemaps")
}

func (l Layout) PaginatedRaw() string {
	return filepath.Join(l.Root, "paginated_raw_xml_sitemaps")
}

func (l Layout) Reports() string {
	return filepath.Join(l.Root, "reports")
}

// All returns every folder of the tree, for creation at run start.
func (l Layout) All() []string {
	return []string{
		l.LocaleGz(), l.LocaleRaw(),
		l.MasterGz(), l.MasterRaw(),
		l.PaginatedGz(), l.PaginatedRaw(),
		l.Reports(),
	}
}
