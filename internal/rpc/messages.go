package rpc

import "github.com/horockey/regclient/internal/model"

type RegistryEntry struct {
	Name       string `json:"name"`
	IP         string `json:"ip"`
	Port       int32  `json:"port"`
	Identifier string `json:"identifier"`
}

type MessageLog struct {
	Entry   *RegistryEntry `json:"entry"`
	Message string         `json:"message"`
}

type ValueLog struct {
	Entry *RegistryEntry `json:"entry"`
	Value float32        `json:"value"`
}

func NewRegistryEntry(e model.RegistryEntry) *RegistryEntry {
	return &RegistryEntry{
		Name:       e.Name,
		IP:         e.IP,
		Port:       e.Port,
		Identifier: e.Identifier,
	}
}

func RegistryEntryToModel(e *RegistryEntry) model.RegistryEntry {
	if e == nil {
		return model.RegistryEntry{}
	}
	return model.RegistryEntry{
		Name:       e.Name,
		IP:         e.IP,
		Port:       e.Port,
		Identifier: e.Identifier,
	}
}
