package game

import "castfast/internal/domain"

// DefaultQuestions is the built-in bank used when no Postgres source is
// configured; swap in a database-backed loader for production content.
func DefaultQuestions() []domain.Question {
	return []domain.Question{
		{Text: "What is the capital of France?", Options: []string{"Paris", "Madrid", "Berlin", "Rome"}, CorrectIndex: 0},
		{Text: "Who painted the Mona Lisa?", Options: []string{"Van Gogh", "Da Vinci", "Picasso", "Michelangelo"}, CorrectIndex: 1},
		{Text: "Which planet is closest to the sun?", Options: []string{"Earth", "Venus", "Mercury", "Mars"}, CorrectIndex: 2},
		{Text: "What is the largest ocean on Earth?", Options: []string{"Atlantic", "Indian", "Arctic", "Pacific"}, CorrectIndex: 3},
		{Text: "How many continents are there?", Options: []string{"Five", "Six", "Seven", "Eight"}, CorrectIndex: 2},
		{Text: "What gas do plants absorb from the atmosphere?", Options: []string{"Oxygen", "Carbon dioxide", "Nitrogen", "Hydrogen"}, CorrectIndex: 1},
		{Text: "Which country hosted the 2016 Summer Olympics?", Options: []string{"China", "Brazil", "Japan", "Greece"}, CorrectIndex: 1},
		{Text: "What is the chemical symbol for gold?", Options: []string{"Go", "Gd", "Au", "Ag"}, CorrectIndex: 2},
		{Text: "Who wrote 'Romeo and Juliet'?", Options: []string{"Dickens", "Shakespeare", "Austen", "Tolstoy"}, CorrectIndex: 1},
		{Text: "What is the smallest prime number?", Options: []string{"0", "1", "2", "3"}, CorrectIndex: 2},
		{Text: "Which instrument has 88 keys?", Options: []string{"Organ", "Harpsichord", "Accordion", "Piano"}, CorrectIndex: 3},
		{Text: "What is the longest river in the world?", Options: []string{"Amazon", "Nile", "Yangtze", "Mississippi"}, CorrectIndex: 1},
		{Text: "In which year did the Berlin Wall fall?", Options: []string{"1987", "1989", "1991", "1993"}, CorrectIndex: 1},
		{Text: "What is the hardest natural substance?", Options: []string{"Quartz", "Steel", "Diamond", "Granite"}, CorrectIndex: 2},
		{Text: "Which blockchain popularized smart contracts?", Options: []string{"Bitcoin", "Ethereum", "Ripple", "Litecoin"}, CorrectIndex: 1},
		{Text: "How many players are on a soccer team on the field?", Options: []string{"9", "10", "11", "12"}, CorrectIndex: 2},
		{Text: "What is the capital of Japan?", Options: []string{"Osaka", "Kyoto", "Tokyo", "Nagoya"}, CorrectIndex: 2},
		{Text: "Which element has the atomic number 1?", Options: []string{"Helium", "Hydrogen", "Oxygen", "Carbon"}, CorrectIndex: 1},
		{Text: "Who developed the theory of relativity?", Options: []string{"Newton", "Einstein", "Bohr", "Curie"}, CorrectIndex: 1},
		{Text: "What is the largest mammal?", Options: []string{"Elephant", "Blue whale", "Giraffe", "Orca"}, CorrectIndex: 1},
	}
}
