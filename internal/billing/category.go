package billing

import "strings"

// ManualEntryCode is the category name that has no rate card; its shifts carry
// a flat cost entered by the coordinator.
const ManualEntryCode = "HIREUP"

// Category is either a RateCardCategory or the ManualEntryCategory.
type Category interface {
	Name() string
	isCategory()
}

type RateCardCategory struct {
	name string
}

func (c RateCardCategory) Name() string { return c.name }
func (RateCardCategory) isCategory()    {}

type ManualEntryCategory struct{}

func (ManualEntryCategory) Name() string { return ManualEntryCode }
func (ManualEntryCategory) isCategory()  {}

func ParseCategory(name string) Category {
	name = strings.TrimSpace(name)
	if name == ManualEntryCode {
		return ManualEntryCategory{}
	}
	return RateCardCategory{name: name}
}

func IsManualEntry(name string) bool {
	_, ok := ParseCategory(name).(ManualEntryCategory)
	return ok
}
