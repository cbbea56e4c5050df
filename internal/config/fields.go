package config

import "fmt"

// settingsKeys lists every recognized key, in settings-table order.
// Used to diff a full reload and to reject unknown keys in Set/Get.
var settingsKeys = []string{
	"model", "device", "input_device", "input_device_id", "keyboard_device",
	"hotkey", "audio_cue_enabled", "silence_duration", "auto_start", "language",
	"disabled_commands", "builtin_overrides", "custom_commands",
	"ollama_enabled", "ollama_model", "ollama_custom_models",
	"ollama_custom_prompt_enabled", "ollama_system_prompt",
}

// fieldValue reads one key from a settings record by name.
func fieldValue(s *Settings, key string) any {
	switch key {
	case "model":
		return s.Model
	case "device":
		return s.Device
	case "input_device":
		return s.InputDevice
	case "input_device_id":
		return s.InputDeviceID
	case "keyboard_device":
		return s.KeyboardDevice
	case "hotkey":
		return s.Hotkey
	case "audio_cue_enabled":
		return s.AudioCueEnabled
	case "silence_duration":
		return s.SilenceDuration
	case "auto_start":
		return s.AutoStart
	case "language":
		return s.Language
	case "disabled_commands":
		return s.DisabledCommands
	case "builtin_overrides":
		return s.BuiltinOverrides
	case "custom_commands":
		return s.CustomCommands
	case "ollama_enabled":
		return s.OllamaEnabled
	case "ollama_model":
		return s.OllamaModel
	case "ollama_custom_models":
		return s.OllamaCustomModels
	case "ollama_custom_prompt_enabled":
		return s.OllamaCustomPromptEnabled
	case "ollama_system_prompt":
		return s.OllamaSystemPrompt
	default:
		return nil
	}
}

// setField assigns value to key, returning whether the value actually
// changed. An unrecognized key or a type mismatch is a caller error.
func setField(s *Settings, key string, value any) (bool, error) {
	switch key {
	case "model":
		v, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("model must be a string")
		}
		changed := s.Model != v
		s.Model = v
		return changed, nil
	case "device":
		v, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("device must be a string")
		}
		changed := s.Device != v
		s.Device = v
		return changed, nil
	case "input_device":
		v, ok := value.(*string)
		if !ok {
			return false, fmt.Errorf("input_device must be a *string")
		}
		changed := !equalStringPtr(s.InputDevice, v)
		s.InputDevice = v
		return changed, nil
	case "input_device_id":
		v, ok := value.(*int)
		if !ok {
			return false, fmt.Errorf("input_device_id must be a *int")
		}
		changed := !equalIntPtr(s.InputDeviceID, v)
		s.InputDeviceID = v
		return changed, nil
	case "keyboard_device":
		v, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("keyboard_device must be a string")
		}
		changed := s.KeyboardDevice != v
		s.KeyboardDevice = v
		return changed, nil
	case "hotkey":
		v, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("hotkey must be a string")
		}
		changed := s.Hotkey != v
		s.Hotkey = v
		return changed, nil
	case "audio_cue_enabled":
		v, ok := value.(bool)
		if !ok {
			return false, fmt.Errorf("audio_cue_enabled must be a bool")
		}
		changed := s.AudioCueEnabled != v
		s.AudioCueEnabled = v
		return changed, nil
	case "silence_duration":
		v, ok := value.(float64)
		if !ok {
			return false, fmt.Errorf("silence_duration must be a float64")
		}
		changed := s.SilenceDuration != v
		s.SilenceDuration = v
		return changed, nil
	case "auto_start":
		v, ok := value.(bool)
		if !ok {
			return false, fmt.Errorf("auto_start must be a bool")
		}
		changed := s.AutoStart != v
		s.AutoStart = v
		return changed, nil
	case "language":
		v, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("language must be a string")
		}
		changed := s.Language != v
		s.Language = v
		return changed, nil
	case "disabled_commands":
		v, ok := value.([]string)
		if !ok {
			return false, fmt.Errorf("disabled_commands must be a []string")
		}
		changed := !equalStringSlice(s.DisabledCommands, v)
		s.DisabledCommands = v
		return changed, nil
	case "builtin_overrides":
		v, ok := value.(map[string]string)
		if !ok {
			return false, fmt.Errorf("builtin_overrides must be a map[string]string")
		}
		changed := !equalStringMap(s.BuiltinOverrides, v)
		s.BuiltinOverrides = v
		return changed, nil
	case "custom_commands":
		v, ok := value.([]CustomCommand)
		if !ok {
			return false, fmt.Errorf("custom_commands must be a []CustomCommand")
		}
		changed := !equalCustomCommands(s.CustomCommands, v)
		s.CustomCommands = v
		return changed, nil
	case "ollama_enabled":
		v, ok := value.(bool)
		if !ok {
			return false, fmt.Errorf("ollama_enabled must be a bool")
		}
		changed := s.OllamaEnabled != v
		s.OllamaEnabled = v
		return changed, nil
	case "ollama_model":
		v, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("ollama_model must be a string")
		}
		changed := s.OllamaModel != v
		s.OllamaModel = v
		return changed, nil
	case "ollama_custom_models":
		v, ok := value.([]string)
		if !ok {
			return false, fmt.Errorf("ollama_custom_models must be a []string")
		}
		changed := !equalStringSlice(s.OllamaCustomModels, v)
		s.OllamaCustomModels = v
		return changed, nil
	case "ollama_custom_prompt_enabled":
		v, ok := value.(bool)
		if !ok {
			return false, fmt.Errorf("ollama_custom_prompt_enabled must be a bool")
		}
		changed := s.OllamaCustomPromptEnabled != v
		s.OllamaCustomPromptEnabled = v
		return changed, nil
	case "ollama_system_prompt":
		v, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("ollama_system_prompt must be a string")
		}
		changed := s.OllamaSystemPrompt != v
		s.OllamaSystemPrompt = v
		return changed, nil
	default:
		return false, fmt.Errorf("unknown settings key %q", key)
	}
}

func equalAny(a, b any) bool {
	switch av := a.(type) {
	case []string:
		bv, ok := b.([]string)
		return ok && equalStringSlice(av, bv)
	case map[string]string:
		bv, ok := b.(map[string]string)
		return ok && equalStringMap(av, bv)
	case []CustomCommand:
		bv, ok := b.([]CustomCommand)
		return ok && equalCustomCommands(av, bv)
	case *string:
		bv, ok := b.(*string)
		return ok && equalStringPtr(av, bv)
	case *int:
		bv, ok := b.(*int)
		return ok && equalIntPtr(av, bv)
	default:
		return a == b
	}
}

func equalStringSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalCustomCommands(a, b []CustomCommand) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStringMap(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
