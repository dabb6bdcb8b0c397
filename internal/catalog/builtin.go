package catalog

// Builtin returns the default ten-exercise English practice course.
func Builtin() *Catalog {
	c, err := New(builtinExercises())
	if err != nil {
		// The built-in course is validated by tests; reaching this is a bug.
		panic(err)
	}
	return c
}

func builtinExercises() []*Exercise {
	return []*Exercise{
		{
			Ordinal:      1,
			Title:        "Introduce Yourself",
			Instructions: "Answer the questions about yourself in full sentences.",
			Body: &Sequential{Prompts: []Prompt{
				{Text: "How are you today?", Accepted: []string{"I am fine", "I am good", "I am great", "fine thank you"}},
				{Text: "Where do you come from?", Accepted: []string{"I come from", "I am from"}},
				{Text: "What do you do in your free time?", Accepted: []string{"I like", "I play", "I read"}},
			}},
		},
		{
			Ordinal:      2,
			Title:        "Everyday Vocabulary",
			Instructions: "Name the thing described in each question.",
			Body: &Sequential{Prompts: []Prompt{
				{Text: "What do you open when it rains?", Accepted: []string{"an umbrella", "umbrella"}},
				{Text: "What do you use to write on paper?", Accepted: []string{"a pen", "a pencil", "pen", "pencil"}},
				{Text: "What do you wear on your feet?", Accepted: []string{"shoes", "boots", "socks"}},
				{Text: "What do you read to learn the news?", Accepted: []string{"a newspaper", "newspaper", "the news"}},
			}},
		},
		{
			Ordinal:      3,
			Title:        "Pronunciation Practice",
			Instructions: "Read each sentence aloud. Send a voice message or type it. Use Skip to move on.",
			Body: &Sequential{Pronunciation: true, Prompts: []Prompt{
				{Text: "The weather is wonderful today."},
				{Text: "She sells seashells by the seashore."},
				{Text: "I would like a cup of coffee, please."},
			}},
		},
		{
			Ordinal:      4,
			Title:        "Match the Opposites",
			Instructions: "Match each word to its opposite. Answer like: A-1, B-2, C-3, D-4, E-5.",
			Body: &Matching{
				Items: []MatchItem{
					{Label: "A", Text: "hot"},
					{Label: "B", Text: "big"},
					{Label: "C", Text: "fast"},
					{Label: "D", Text: "early"},
					{Label: "E", Text: "happy"},
				},
				Targets: []Target{
					{Number: 1, Text: "late"},
					{Number: 2, Text: "sad"},
					{Number: 3, Text: "slow"},
					{Number: 4, Text: "cold"},
					{Number: 5, Text: "small"},
				},
				Key: map[string][]int{"A": {4}, "B": {5}, "C": {3}, "D": {1}, "E": {2}},
			},
		},
		{
			Ordinal:      5,
			Title:        "Reading: A Present",
			Instructions: "Read the passage, then answer the questions.",
			Body: &Comprehension{
				Passage: "Yesterday was Anna's birthday. Her sister gave her a new book " +
					"about travel. Anna read it all evening and decided to visit the sea " +
					"in summer.",
				Prompts: []Prompt{
					{Text: "What did Anna get from her sister?", Accepted: []string{"a new book", "book about travel"}},
					{Text: "When was Anna's birthday?", Accepted: []string{"yesterday"}},
					{Text: "What did Anna decide to visit?", Accepted: []string{"the sea"}},
				},
			},
		},
		{
			Ordinal:      6,
			Title:        "Grammar: Past Simple",
			Instructions: "Put the verb in brackets into the past simple.",
			Body: &Sequential{Prompts: []Prompt{
				{Text: "She (go) to school by bus.", Accepted: []string{"went", "she went to school by bus"}},
				{Text: "They (see) a film last night.", Accepted: []string{"saw", "they saw a film last night"}},
				{Text: "I (buy) some bread this morning.", Accepted: []string{"bought", "i bought some bread this morning"}},
			}},
		},
		{
			Ordinal:      7,
			Title:        "Free Talk",
			Instructions: "There is no right answer here.",
			Body: &FreeResponse{
				Prompt: "Tell me about your favourite place in your city. Why do you like it?",
			},
		},
		{
			Ordinal:      8,
			Title:        "Match Words to Definitions",
			Instructions: "Match each word to its definition. Answer like: A-1, B-2, C-3, D-4.",
			Body: &Matching{
				Items: []MatchItem{
					{Label: "A", Text: "library"},
					{Label: "B", Text: "bakery"},
					{Label: "C", Text: "pharmacy"},
					{Label: "D", Text: "station"},
				},
				Targets: []Target{
					{Number: 1, Text: "a place where trains stop"},
					{Number: 2, Text: "a place where you borrow books"},
					{Number: 3, Text: "a place where bread is made"},
					{Number: 4, Text: "a place where you buy medicine"},
				},
				Key: map[string][]int{"A": {2}, "B": {3}, "C": {4}, "D": {1}},
			},
		},
		{
			Ordinal:      9,
			Title:        "Translate the Phrases",
			Instructions: "Give the English for each phrase.",
			Body: &Sequential{Prompts: []Prompt{
				{Text: "Say hello to a person you meet in the morning.", Accepted: []string{"good morning", "hello"}},
				{Text: "Politely ask for something.", Accepted: []string{"please", "could you please"}},
				{Text: "Thank someone for their help.", Accepted: []string{"thank you", "thank you for your help", "thanks"}},
			}},
		},
		{
			Ordinal:      10,
			Title:        "Reading: The Old Clock",
			Instructions: "Read the passage, then answer the questions.",
			Body: &Comprehension{
				Passage: "In the town square stands an old clock. It has shown the time for " +
					"two hundred years. Every hour a small bronze bird comes out and sings. " +
					"Children gather to watch it every day at noon.",
				Prompts: []Prompt{
					{Text: "What stands in the town square?", Accepted: []string{"an old clock", "old clock", "a clock"}},
					{Text: "What comes out every hour?", Accepted: []string{"a small bronze bird", "a bird", "bronze bird"}},
					{Text: "When do children gather to watch?", Accepted: []string{"at noon", "every day at noon", "noon"}},
				},
			},
		},
	}
}
