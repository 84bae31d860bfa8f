package domain

// SampleQuestions returns the reference question bank with ids 1..10.
func SampleQuestions() []Question {
	return []Question{
		{ID: 1, Text: "What is the capital city of France?", OptionA: "Paris", OptionB: "London", OptionC: "Berlin", OptionD: "Rome", CorrectOption: "A"},
		{ID: 2, Text: "Which planet is known as the Red Planet?", OptionA: "Venus", OptionB: "Jupiter", OptionC: "Mars", OptionD: "Saturn", CorrectOption: "C"},
		{ID: 3, Text: "What is the chemical symbol for gold?", OptionA: "Go", OptionB: "Gd", OptionC: "Gl", OptionD: "Au", CorrectOption: "D"},
		{ID: 4, Text: "Who wrote 'Romeo and Juliet'?", OptionA: "Charles Dickens", OptionB: "William Shakespeare", OptionC: "Jane Austen", OptionD: "Mark Twain", CorrectOption: "B"},
		{ID: 5, Text: "What is the largest ocean on Earth?", OptionA: "Atlantic Ocean", OptionB: "Indian Ocean", OptionC: "Arctic Ocean", OptionD: "Pacific Ocean", CorrectOption: "D"},
		{ID: 6, Text: "Which element has the chemical symbol 'O'?", OptionA: "Oxygen", OptionB: "Osmium", OptionC: "Oganesson", OptionD: "Oregano", CorrectOption: "A"},
		{ID: 7, Text: "What is the square root of 144?", OptionA: "10", OptionB: "12", OptionC: "14", OptionD: "16", CorrectOption: "B"},
		{ID: 8, Text: "Which country is known as the Land of the Rising Sun?", OptionA: "China", OptionB: "Thailand", OptionC: "Japan", OptionD: "Korea", CorrectOption: "C"},
		{ID: 9, Text: "Who painted the Mona Lisa?", OptionA: "Pablo Picasso", OptionB: "Vincent van Gogh", OptionC: "Michelangelo", OptionD: "Leonardo da Vinci", CorrectOption: "D"},
		{ID: 10, Text: "What is the currency of Japan?", OptionA: "Yuan", OptionB: "Won", OptionC: "Yen", OptionD: "Ringgit", CorrectOption: "C"},
	}
}
