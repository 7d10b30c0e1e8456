package dto

import "github.com/horockey/regclient/internal/model"

type Entry struct {
	Name       string `json:"name"`
	IP         string `json:"ip"`
	Port       int32  `json:"port"`
	Identifier string `json:"identifier,omitempty"`
}

func NewEntry(e model.RegistryEntry) Entry {
	return Entry{
		Name:       e.Name,
		IP:         e.IP,
		Port:       e.Port,
		Identifier: e.Identifier,
	}
}
