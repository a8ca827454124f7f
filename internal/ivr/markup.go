package ivr

import (
	"fmt"

	"github.com/CallForge/DrillLine/internal/models"
	"github.com/twilio/twilio-go/twiml"
)

// Webhook paths the markup documents point the provider at.
const (
	EntryPath      = "/voice"
	MenuPath       = "/menu"
	DifficultyPath = "/difficulty"
	ScenarioPath   = "/scenario"
)

// Markup constants. Timeouts are the provider's gather timeouts, in seconds,
// carried as string attributes on the Gather verb.
const (
	speakingVoice = "alice"

	menuTimeout = "6"
	gateTimeout = "8"

	// sessionPauseSeconds stands in for the training-session audio, which is
	// not implemented yet.
	sessionPauseSeconds = "10"
)

func say(message string) *twiml.VoiceSay {
	return &twiml.VoiceSay{Message: message, Voice: speakingVoice}
}

func redirect(url string) *twiml.VoiceRedirect {
	return &twiml.VoiceRedirect{Url: url, Method: "POST"}
}

func gatherDigit(action, timeout string, prompt *twiml.VoiceSay) *twiml.VoiceGather {
	return &twiml.VoiceGather{
		NumDigits:     "1",
		Timeout:       timeout,
		Action:        action,
		Method:        "POST",
		InnerElements: []twiml.Element{prompt},
	}
}

// Greeting is the call-entry document: gather one digit for the main menu,
// looping back to entry when the caller stays silent.
func Greeting() (string, error) {
	return twiml.Voice([]twiml.Element{
		gatherDigit(MenuPath, menuTimeout, say(
			"Welcome to the DrillLine training hotline. "+
				"For the M1 drill, press 1. For the MCD drill, press 2.")),
		say("We did not receive any input. Returning to the main menu."),
		redirect(EntryPath),
	})
}

// MenuAck acknowledges a valid menu selection and redirects to the selected
// flow's gate prompt.
func MenuAck(def Definition) (string, error) {
	return twiml.Voice([]twiml.Element{
		say(fmt.Sprintf("You selected the %s drill.", def.SpokenName)),
		redirect(def.PromptPath()),
	})
}

// MenuInvalid redirects an unrecognized menu selection back to call entry.
// An invalid selection is a recoverable loop, not an error.
func MenuInvalid() (string, error) {
	return twiml.Voice([]twiml.Element{
		say("Invalid selection."),
		redirect(EntryPath),
	})
}

// GatePrompt asks the caller to speak the gate phrase and press the gate
// digit. Only the digit is evaluated; the phrase stays instructional until
// speech recognition is commissioned. Silence falls back to call entry.
func GatePrompt(def Definition) (string, error) {
	return twiml.Voice([]twiml.Element{
		gatherDigit(def.GatePath(), gateTimeout, say(fmt.Sprintf(
			"You have reached the %s drill gate. Say the phrase, %s, then press %s to confirm.",
			def.SpokenName, def.GatePhrase, def.GateDigit))),
		redirect(EntryPath),
	})
}

// GatePass confirms the gate and forwards the flow name to the difficulty
// selector via the callback URL.
func GatePass(def Definition) (string, error) {
	return twiml.Voice([]twiml.Element{
		say("Confirmation received. Proceeding to difficulty selection."),
		redirect(fmt.Sprintf("%s?mode=%s", DifficultyPath, def.Name)),
	})
}

// GateFail announces the failed confirmation and loops back to the same
// flow's gate prompt. The retry loop is unbounded.
func GateFail(def Definition) (string, error) {
	return twiml.Voice([]twiml.Element{
		say(fmt.Sprintf("Confirmation failed. Returning to the %s drill gate.", def.SpokenName)),
		redirect(def.PromptPath()),
	})
}

// DifficultyPrompt offers the three difficulty options, carrying the flow
// name forward on the scenario callback URL.
func DifficultyPrompt(def Definition) (string, error) {
	action := fmt.Sprintf("%s?mode=%s", ScenarioPath, def.Name)
	return twiml.Voice([]twiml.Element{
		gatherDigit(action, gateTimeout, say(fmt.Sprintf(
			"Select a difficulty for the %s scenario. "+
				"Press 1 for Standard. Press 2 for Moderate. Press 3 for Edge.",
			def.SpokenName))),
		redirect(EntryPath),
	})
}

// ScenarioBrief speaks the selected flow and difficulty, the policy reminder,
// a placeholder pause for the session itself, and ends the call.
func ScenarioBrief(def Definition, d models.Difficulty) (string, error) {
	return twiml.Voice([]twiml.Element{
		say(fmt.Sprintf("%s scenario loaded.", def.SpokenName)),
		say(fmt.Sprintf("Difficulty: %s.", d)),
		say("This is a training exercise. Follow your standard operating procedures " +
			"and treat all traffic as drill traffic."),
		&twiml.VoicePause{Length: sessionPauseSeconds},
		say("Training session complete. Goodbye."),
		&twiml.VoiceHangup{},
	})
}

// ScenarioInvalid ends the call on an out-of-range difficulty digit. There is
// no earlier digit-collection step to retry without re-selecting the flow, so
// this is the one terminal path with no loop-back.
func ScenarioInvalid() (string, error) {
	return twiml.Voice([]twiml.Element{
		say("Invalid difficulty selection. The session has ended. Goodbye."),
		&twiml.VoiceHangup{},
	})
}

// FailureDocument is the catch-all response when markup generation itself
// fails: an apology and a hangup. It must never itself fail, so it is a
// fixed document.
const FailureDocument = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<Response><Say voice="alice">We are sorry, an application error has occurred. Goodbye.</Say><Hangup/></Response>`
