package companion

// CrisisLines is included in every crisis reply.
const CrisisLines = "call or text 988 (Suicide & Crisis Lifeline, 24/7) or text HOME to 741741 (Crisis Text Line)"

const (
	// FallbackMessage is the fixed reply used when the model call fails.
	FallbackMessage = "I'm here to support you. What's on your mind today?"

	// MemoryErrorMessage replaces FallbackMessage when the backend could not
	// load the model for lack of memory.
	MemoryErrorMessage = "I couldn't start the language model because the machine ran out of memory. " +
		"Try a smaller model (for example llama3.2:1b) or run Ollama on CPU only. " +
		"I'm still here, so feel free to keep talking."

	ListeningMessage = "I'm listening. Take your time and tell me what's on your mind."

	DefaultSystemPrompt = "You are MindEase, a supportive, non-judgmental AI companion for student mental health. " +
		"Always be empathetic, concise, and practical. Avoid medical claims or diagnoses. " +
		"Offer grounding techniques, breathing exercises, reframes, and resources. " +
		"Encourage reaching out to trusted people or professionals when needed. " +
		"If someone mentions self-harm or suicide, urge them to " + CrisisLines + ". " +
		"Maintain a calm, warm tone."
)

// Intent is the category the fallback classifier assigns to a message.
type Intent string

const (
	IntentCrisis     Intent = "crisis"
	IntentGreeting   Intent = "greeting"
	IntentStress     Intent = "stress"
	IntentAnxiety    Intent = "anxiety"
	IntentSadness    Intent = "sadness"
	IntentLoneliness Intent = "loneliness"
	IntentBreathing  Intent = "breathing"
	IntentHelp       Intent = "help"
	IntentGratitude  Intent = "gratitude"
	IntentDefault    Intent = "default"
)

// A keyword ending in '*' matches any word starting with it; other keywords
// must match whole words.
type keywordGroup struct {
	intent   Intent
	keywords []string
}

// intentOrder is checked top to bottom. Crisis comes first so that safety
// wins over every other match in the same message.
var intentOrder = []keywordGroup{
	{IntentCrisis, []string{
		"suicide", "suicidal", "kill myself", "killing myself", "end it all", "end my life",
		"want to die", "wanna die", "self harm", "hurt myself", "harm myself", "cut myself",
		"no reason to live", "better off dead", "don't want to live", "dont want to live",
	}},
	{IntentGreeting, []string{
		"hi", "hello", "hey", "hiya", "howdy", "good morning", "good afternoon", "good evening",
	}},
	{IntentStress, []string{
		"stress*", "exam*", "test", "tests", "deadline*", "homework", "assignment*",
		"overwhelm*", "pressure", "grades", "finals", "midterm*",
	}},
	{IntentAnxiety, []string{
		"anxi*", "worried", "worry", "worrying", "nervous", "panic*", "on edge",
	}},
	{IntentSadness, []string{
		// "down" only as a mood phrase, so "calm down" reaches breathing.
		"sad", "sadness", "feel down", "feeling down", "felt down", "so down", "really down", "down lately",
		"depress*", "unhappy", "hopeless", "crying", "miserable", "empty",
	}},
	{IntentLoneliness, []string{
		"lonely", "loneliness", "alone", "isolated", "friend*", "no one", "nobody",
	}},
	{IntentBreathing, []string{
		"breath*", "calm*", "relax*", "meditat*", "grounding",
	}},
	{IntentHelp, []string{
		"help*", "support", "need",
	}},
	{IntentGratitude, []string{
		"thank*", "thx", "appreciate*", "grateful",
	}},
}

var responsePools = map[Intent][]string{
	IntentCrisis: {
		"I'm really sorry you're feeling this way, and I'm glad you told me. You deserve support right now. Please " + CrisisLines + ". If you are in immediate danger, call your local emergency number.",
		"What you're going through sounds incredibly painful, and you don't have to face it alone. Please reach out right now: " + CrisisLines + ". Is there someone you trust who can stay with you?",
		"Thank you for trusting me with something this heavy. Your life matters. Please " + CrisisLines + " so you can talk with someone who is trained to help, any time of day.",
	},
	IntentGreeting: {
		"Hello! It's good to hear from you. What's on your mind today? I'm here to listen and support you however I can.",
		"Hi there! How are you feeling today? You can share anything, big or small.",
		"Hey! I'm glad you stopped by. How has your day been so far?",
	},
	IntentStress: {
		"I hear that you're feeling stressed. That's completely valid, academic pressure can be overwhelming. Would you like to try a quick breathing exercise together, or talk about what's worrying you most?",
		"Exams and deadlines can pile up fast. Let's break it down: what's the one task that feels heaviest right now? Sometimes naming it makes it smaller.",
		"It sounds like a lot is on your plate. Remember that rest is part of studying well. Could you take a five-minute break and then pick one small step to start with?",
	},
	IntentAnxiety: {
		"Thank you for sharing that you're feeling anxious. Anxiety can feel really intense, but you're not alone in this. Can you tell me more about what's triggering these feelings?",
		"When anxiety shows up, grounding can help. Try naming five things you can see, four you can touch, three you can hear, two you can smell and one you can taste.",
		"Worry often pulls us into the future. Let's come back to right now: what's one thing within your control today?",
	},
	IntentSadness: {
		"I'm really glad you felt comfortable sharing that with me. Feeling sad or down is part of being human, though I know that doesn't make it easier. Has something specific been weighing on you?",
		"I'm sorry you're feeling low. Be gentle with yourself today. Is there a small comforting thing you could do for yourself, like a walk, some music or a warm drink?",
		"It's okay not to be okay. If this heaviness has lasted a while, talking to a counselor can really help. Would you like to tell me more about how you've been feeling?",
	},
	IntentLoneliness: {
		"Feeling lonely can be really difficult, especially during school years. You deserve meaningful connections. Would you like to explore what's happening in your relationships, or talk about ways to build new ones?",
		"I'm here with you right now. Loneliness is more common than it seems, and reaching out like this is a brave first step. Is there a club, class or person you've thought about connecting with?",
	},
	IntentBreathing: {
		"Let's do a simple breathing exercise together. Breathe in slowly for 4 counts, hold for 4, breathe out for 4, and hold again for 4. This is box breathing, and it can help calm your nervous system. Try it a few times and let me know how you feel.",
		"Try the 4-7-8 technique: breathe in through your nose for 4 counts, hold for 7, and breathe out slowly through your mouth for 8. Repeat it three or four times.",
	},
	IntentHelp: {
		"I'm here to support you. You can talk to me about stress, anxiety, relationships, school, or just how you're feeling today. I can also guide you through breathing exercises or suggest coping strategies. What would help most right now?",
		"Of course, I'm here to help. Tell me a little about what's going on, and we can figure out a next step together.",
	},
	IntentGratitude: {
		"You're very welcome! I'm here whenever you need support. Taking care of your mental health is a sign of strength, not weakness.",
		"Thank you for saying that. I'm glad this helped a little. Is there anything else you'd like to talk about today?",
	},
	IntentDefault: {
		"I appreciate you sharing that with me. It takes courage to open up. Could you tell me a bit more about what you're going through? I'm here to listen without judgment.",
		"Thank you for telling me. How has this been affecting you day to day?",
		"I'm listening. What feels most important for you to talk about right now?",
	},
}
